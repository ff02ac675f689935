// internal/workers/analysis/format-report/report.go
package formatreport

import (
	"fmt"
	"strings"
)

const (
	generatedLayout = "January 02, 2006 at 15:04"
	fileLayout      = "20060102_150405"
	maxIDChars      = 64
)

var banner = strings.Repeat("=", 80)

// Format renders the four stage results as the plain-text insights report.
// Missing keys render as N/A and missing lists render no bullets.
func Format(in *Input) string {
	var b strings.Builder

	section(&b, "🚀 STARTUP INSIGHTS REPORT")
	fmt.Fprintf(&b, "Generated: %s\n", in.GeneratedAt.Format(generatedLayout))

	v := in.Viability
	b.WriteString("\n")
	section(&b, "📊 MARKET VIABILITY ANALYSIS")
	fmt.Fprintf(&b, "Overall Score: %s/100\n", v.String("market_viability_score"))
	fmt.Fprintf(&b, "Market Timing: %s\n", v.Upper("market_timing"))
	fmt.Fprintf(&b, "Market Size: %s\n", v.Upper("market_size_rating"))
	fmt.Fprintf(&b, "Current Conditions: %s\n", v.Upper("current_market_conditions"))
	fmt.Fprintf(&b, "\nSummary:\n%s\n", v.String("viability_summary"))
	bullets(&b, "\nKey Market Insights:\n", "  • ", v.List("key_market_insights"))

	f := in.Fit
	b.WriteString("\n")
	section(&b, "🎯 PROBLEM-SOLUTION FIT ANALYSIS")
	fmt.Fprintf(&b, "Value Proposition Strength: %s/100\n", f.String("unique_value_proposition_strength"))
	fmt.Fprintf(&b, "Problem Urgency: %s\n", f.Upper("problem_urgency"))
	fmt.Fprintf(&b, "Solution Differentiation: %s\n", f.Upper("solution_differentiation"))
	fmt.Fprintf(&b, "Applicability: %s\n", f.Upper("real_world_applicability"))
	bullets(&b, "\nPain Points Addressed:\n", "  • ", f.List("primary_pain_points_addressed"))
	bullets(&b, "\nTarget Market Segments:\n", "  • ", f.List("target_market_segments"))
	bullets(&b, "\nImpact Areas:\n", "  • ", f.List("impact_areas"))
	fmt.Fprintf(&b, "\nDetailed Analysis:\n%s\n", f.String("help_analysis"))

	s := in.Saturation
	b.WriteString("\n")
	section(&b, "🌊 MARKET SATURATION ANALYSIS")
	fmt.Fprintf(&b, "Saturation Level: %s\n", s.Upper("saturation_level"))
	fmt.Fprintf(&b, "Saturation Score: %s/100\n", s.String("saturation_score"))
	fmt.Fprintf(&b, "Direct Competitors: %s\n", s.String("number_of_direct_competitors"))
	fmt.Fprintf(&b, "Indirect Competitors: %s\n", s.String("number_of_indirect_competitors"))
	fmt.Fprintf(&b, "Competitive Intensity: %s\n", s.Upper("competitive_intensity"))
	fmt.Fprintf(&b, "Barriers to Entry: %s\n", s.Upper("barriers_to_entry"))
	fmt.Fprintf(&b, "Market Stage: %s\n", s.Upper("market_consolidation_stage"))
	bullets(&b, "\nMajor Players:\n", "  • ", s.List("major_players"))
	bullets(&b, "\nWhitespace Opportunities:\n", "  • ", s.List("whitespace_opportunities"))
	fmt.Fprintf(&b, "\nDetailed Analysis:\n%s\n", s.String("saturation_analysis"))

	r := in.Recommendations
	b.WriteString("\n")
	section(&b, "💡 RECOMMENDATIONS & VERDICT")
	fmt.Fprintf(&b, "Overall Verdict: %s\n", r.Label("overall_verdict"))
	fmt.Fprintf(&b, "Confidence Level: %s/100\n", r.String("confidence_level"))
	fmt.Fprintf(&b, "Funding Feasibility: %s\n", r.Label("funding_feasibility"))
	bullets(&b, "\n🚨 CRITICAL RISKS:\n", "  ⚠️  ", r.List("critical_risks"))
	bullets(&b, "\n🔴 RED FLAGS:\n", "  ❌ ", r.List("red_flags"))
	bullets(&b, "\n🟢 GREEN FLAGS:\n", "  ✅ ", r.List("green_flags"))

	b.WriteString("\n📋 STRATEGIC RECOMMENDATIONS:\n")
	for _, rec := range r.Objects("strategic_recommendations") {
		fmt.Fprintf(&b, "  %s [%s] %s\n", priorityMarker(rec.String("priority")), rec.Upper("priority"), rec.String("recommendation"))
	}

	bullets(&b, "\n🔄 PIVOT SUGGESTIONS:\n", "  • ", r.List("pivot_suggestions"))
	bullets(&b, "\n🎯 DIFFERENTIATION STRATEGIES:\n", "  • ", r.List("differentiation_strategies"))
	bullets(&b, "\n📈 GO-TO-MARKET ADVICE:\n", "  • ", r.List("go_to_market_advice"))

	b.WriteString("\n✅ RECOMMENDED NEXT STEPS:\n")
	for i, step := range r.List("recommended_next_steps") {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}

	b.WriteString("\n")
	section(&b, "📝 EXECUTIVE SUMMARY")
	fmt.Fprintf(&b, "%s\n\n", r.String("executive_summary"))
	section(&b, "END OF REPORT")

	return "\n" + b.String()
}

// FileName returns the report file name: generation time, then the
// submission id when present, then token. The token keeps two reports
// written in the same second apart.
func FileName(in *Input, token string) string {
	parts := []string{"startup_insights_report", in.GeneratedAt.Format(fileLayout)}
	if id := safeName(in.SubmissionID); id != "" {
		parts = append(parts, id)
	}
	if token != "" {
		parts = append(parts, token)
	}
	return strings.Join(parts, "_") + ".txt"
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
	if len(s) > maxIDChars {
		s = s[:maxIDChars]
	}
	return s
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n%s\n%s\n", banner, title, banner)
}

func bullets(b *strings.Builder, heading, marker string, items []string) {
	b.WriteString(heading)
	for _, item := range items {
		b.WriteString(marker)
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func priorityMarker(priority string) string {
	switch priority {
	case "critical":
		return "🔥"
	case "high":
		return "⚡"
	default:
		return "📌"
	}
}
