// internal/workers/analysis/market-analysis/prompts.go
package marketanalysis

import (
	"fmt"

	"mic-ai-service/pkg/registry"
)

const viabilityPrompt = `You are a senior venture capital analyst with 20 years of experience. Analyze this startup idea with BRUTAL HONESTY.

STARTUP IDEA:
%s

CURRENT MARKET DATA (2024-2025):
%s

Provide a JSON response with this EXACT structure:
{
    "market_viability_score": <0-100>,
    "market_timing": "early|perfect|late|too_late",
    "market_size_rating": "tiny|small|medium|large|massive",
    "current_market_conditions": "favorable|neutral|unfavorable|hostile",
    "key_market_insights": ["insight1", "insight2", "insight3"],
    "viability_summary": "2-3 sentences explaining the score"
}

Be extremely critical. A score of 70+ should be rare. Most ideas are mediocre (40-60 range).`

const fitPrompt = `You are a product strategy expert. Analyze where this startup can genuinely help.

STARTUP IDEA:
%s

MARKET CONTEXT:
%s

Provide a JSON response:
{
    "primary_pain_points_addressed": ["pain1", "pain2", "pain3"],
    "target_market_segments": ["segment1", "segment2"],
    "unique_value_proposition_strength": <0-100>,
    "problem_urgency": "low|medium|high|critical",
    "solution_differentiation": "none|weak|moderate|strong|exceptional",
    "real_world_applicability": "limited|moderate|broad|universal",
    "impact_areas": ["area1", "area2"],
    "help_analysis": "Detailed 3-4 sentence analysis of how and where this actually helps users"
}

Be honest about the actual value provided. Don't exaggerate.`

const saturationPrompt = `You are a market research expert. Analyze market saturation with NO SUGAR-COATING.

STARTUP IDEA:
%s

COMPETITIVE LANDSCAPE DATA:
%s

Provide a JSON response:
{
    "saturation_level": "empty|low|moderate|high|oversaturated|dying",
    "saturation_score": <0-100>,
    "number_of_direct_competitors": "0-5|5-20|20-50|50-100|100+",
    "number_of_indirect_competitors": "0-5|5-20|20-50|50-100|100+",
    "major_players": ["company1", "company2", "company3"],
    "barriers_to_entry": "very_low|low|moderate|high|very_high",
    "market_consolidation_stage": "emerging|growth|mature|declining",
    "competitive_intensity": "low|moderate|high|cutthroat",
    "whitespace_opportunities": ["opportunity1", "opportunity2"],
    "saturation_analysis": "Detailed 4-5 sentence analysis explaining WHY the market is at this saturation level"
}

If the market is oversaturated, say it clearly. Don't hold back.`

const recommendationsPrompt = `You are a startup advisor who has seen thousands of companies succeed and fail. Provide ACTIONABLE, SPECIFIC recommendations.

STARTUP IDEA:
%s

ANALYSIS RESULTS:
Market Viability Score: %s/100
Market Timing: %s
Saturation Level: %s
Competitive Intensity: %s
Solution Differentiation: %s

MARKET CONTEXT:
%s

Provide a JSON response:
{
    "overall_verdict": "kill_it|pivot_hard|proceed_with_caution|promising|strong_potential|exceptional",
    "confidence_level": <0-100>,
    "critical_risks": ["risk1", "risk2", "risk3"],
    "strategic_recommendations": [
        {"priority": "critical|high|medium", "recommendation": "specific action"},
        {"priority": "critical|high|medium", "recommendation": "specific action"},
        {"priority": "critical|high|medium", "recommendation": "specific action"}
    ],
    "pivot_suggestions": ["suggestion1", "suggestion2"],
    "differentiation_strategies": ["strategy1", "strategy2"],
    "go_to_market_advice": ["advice1", "advice2"],
    "funding_feasibility": "very_difficult|difficult|moderate|feasible|highly_feasible",
    "recommended_next_steps": ["step1", "step2", "step3"],
    "red_flags": ["flag1", "flag2"],
    "green_flags": ["flag1", "flag2"],
    "executive_summary": "5-6 sentences of brutally honest final assessment and advice"
}

Be SPECIFIC. Don't give generic advice like "improve your product". Give ACTIONABLE steps.`

// buildPrompt renders the user prompt for a stage. The corpus is cut to
// the stage's CorpusChars.
func buildPrompt(stage registry.Stage, in StageInput) (string, error) {
	corpus := truncateRunes(in.Corpus, stage.CorpusChars)

	switch stage.ID {
	case registry.StageViability:
		return fmt.Sprintf(viabilityPrompt, in.Idea, corpus), nil
	case registry.StageFit:
		return fmt.Sprintf(fitPrompt, in.Idea, corpus), nil
	case registry.StageSaturation:
		return fmt.Sprintf(saturationPrompt, in.Idea, corpus), nil
	case registry.StageRecommendations:
		return fmt.Sprintf(recommendationsPrompt,
			in.Idea,
			in.Viability.String("market_viability_score"),
			in.Viability.String("market_timing"),
			in.Saturation.String("saturation_level"),
			in.Saturation.String("competitive_intensity"),
			in.Fit.String("solution_differentiation"),
			corpus,
		), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStage, stage.ID)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
