// internal/workers/ai-conversation/chat-responder/fallback.go
package chatresponder

import "strings"

// relevanceKeywords decide whether a message concerns the Innovation Centre.
// Matching is by substring, so "hi" also matches "this".
var relevanceKeywords = []string{
	"mahe", "mic", "innovation centre", "innovation center", "manipal",
	"event", "events", "workshop", "workshops", "program", "programs",
	"resource", "resources", "toolkit", "toolkits", "guide", "guides",
	"mentorship", "incubation", "incubator", "entrepreneur", "entrepreneurship",
	"sid", "schap", "e-cell", "ecell", "contact", "about", "team",
	"funding", "financial aid", "startup", "startups", "collaboration",
	"what is", "what exactly is", "what does", "explain", "tell me about",
	"hello", "hi", "hey", "help", "how", "who", "when", "where",
}

type fallbackRule struct {
	phrases []string
	reply   string
}

// fallbackRules are checked in order; the first match wins.
var fallbackRules = []fallbackRule{
	{
		phrases: []string{"what is mic", "what exactly is mic", "what does mic stand for", "what is mahe innovation centre"},
		reply:   "MiC stands for MAHE Innovation Centre, Manipal's premier hub for innovation and entrepreneurship. We provide funding, incubation programs, and mentorship to aspiring entrepreneurs. [BUTTON:About Page|/about]",
	},
	{
		phrases: []string{"event", "events", "workshop", "program"},
		reply:   "We host various events including workshops, hackathons, and innovation showcases. [BUTTON:Events Page|/events]",
	},
	{
		phrases: []string{"resource", "resources", "toolkit", "guide"},
		reply:   "We provide numerous resources for innovators and entrepreneurs including toolkits, guides, and mentorship materials. [BUTTON:Resources Page|/resources]",
	},
	{
		phrases: []string{"contact", "reach", "get in touch"},
		reply:   "You can contact us through our Contact page or reach out via email. We're here to help! [BUTTON:Contact Page|/contact]",
	},
	{
		phrases: []string{"about", "who we are"},
		reply:   "MAHE Innovation Centre is Manipal's hub for innovation and entrepreneurship. [BUTTON:About Page|/about]",
	},
	{
		phrases: []string{"incubation", "startup", "funding"},
		reply:   "We offer incubation support through MAHE SID and provide financial aid to entrepreneurs. [BUTTON:Resources Page|/resources]",
	},
	{
		phrases: []string{"hello", "hi", "hey"},
		reply:   "Hello! Welcome to MAHE Innovation Centre. How can I help you today? You can ask about our events, resources, programs, or anything else about MiC!",
	},
}

// IsWebsiteRelated reports whether query mentions any relevance keyword.
func IsWebsiteRelated(query string) bool {
	return containsAny(strings.ToLower(query), relevanceKeywords)
}

// FallbackResponse picks a canned reply by keyword. Unmatched queries get RedirectReply.
func FallbackResponse(query string) string {
	q := strings.ToLower(query)
	for _, rule := range fallbackRules {
		if containsAny(q, rule.phrases) {
			return rule.reply
		}
	}
	return RedirectReply
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
