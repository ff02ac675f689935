// pkg/registry/stages.go
package registry

const (
	StageViability       = "viability"
	StageFit             = "fit"
	StageSaturation      = "saturation"
	StageRecommendations = "recommendations"
)

// Default returns the built-in stage definitions in pipeline order.
func Default() *StageRegistry {
	return &StageRegistry{
		Version:     "1.0.0",
		LastUpdated: "2025-01-15",
		Stages: []Stage{
			{
				ID:           StageViability,
				DisplayName:  "Market Viability",
				Description:  "How well the idea fares in the current market",
				SystemPrompt: "You are a brutally honest VC analyst. Respond ONLY with valid JSON.",
				Temperature:  0.3,
				MaxTokens:    1024,
				CorpusChars:  8000,
				OutputSchema: object(map[string]interface{}{
					"market_viability_score":    score(),
					"market_timing":             enum("early", "perfect", "late", "too_late"),
					"market_size_rating":        enum("tiny", "small", "medium", "large", "massive"),
					"current_market_conditions": enum("favorable", "neutral", "unfavorable", "hostile"),
					"key_market_insights":       strList(),
					"viability_summary":         str(),
				}),
				Tags: []string{"market"},
			},
			{
				ID:           StageFit,
				DisplayName:  "Problem-Solution Fit",
				Description:  "Where and how the idea genuinely helps",
				SystemPrompt: "You are a critical product strategist. Respond ONLY with valid JSON.",
				Temperature:  0.3,
				MaxTokens:    1024,
				CorpusChars:  8000,
				OutputSchema: object(map[string]interface{}{
					"primary_pain_points_addressed":     strList(),
					"target_market_segments":            strList(),
					"unique_value_proposition_strength": score(),
					"problem_urgency":                   enum("low", "medium", "high", "critical"),
					"solution_differentiation":          enum("none", "weak", "moderate", "strong", "exceptional"),
					"real_world_applicability":          enum("limited", "moderate", "broad", "universal"),
					"impact_areas":                      strList(),
					"help_analysis":                     str(),
				}),
				Tags: []string{"product"},
			},
			{
				ID:           StageSaturation,
				DisplayName:  "Market Saturation",
				Description:  "Whether the market is overpopulated",
				SystemPrompt: "You are a no-nonsense market analyst. Respond ONLY with valid JSON.",
				Temperature:  0.3,
				MaxTokens:    1024,
				CorpusChars:  8000,
				OutputSchema: object(map[string]interface{}{
					"saturation_level":               enum("empty", "low", "moderate", "high", "oversaturated", "dying"),
					"saturation_score":               score(),
					"number_of_direct_competitors":   enum("0-5", "5-20", "20-50", "50-100", "100+"),
					"number_of_indirect_competitors": enum("0-5", "5-20", "20-50", "50-100", "100+"),
					"major_players":                  strList(),
					"barriers_to_entry":              enum("very_low", "low", "moderate", "high", "very_high"),
					"market_consolidation_stage":     enum("emerging", "growth", "mature", "declining"),
					"competitive_intensity":          enum("low", "moderate", "high", "cutthroat"),
					"whitespace_opportunities":       strList(),
					"saturation_analysis":            str(),
				}),
				Tags: []string{"market", "competition"},
			},
			{
				ID:           StageRecommendations,
				DisplayName:  "Recommendations",
				Description:  "Verdict and actionable next steps",
				SystemPrompt: "You are a brutally honest startup advisor. Respond ONLY with valid JSON.",
				Temperature:  0.4,
				MaxTokens:    2048,
				CorpusChars:  6000,
				OutputSchema: object(map[string]interface{}{
					"overall_verdict":  enum("kill_it", "pivot_hard", "proceed_with_caution", "promising", "strong_potential", "exceptional"),
					"confidence_level": score(),
					"critical_risks":   strList(),
					"strategic_recommendations": map[string]interface{}{
						"type": "array",
						"items": object(map[string]interface{}{
							"priority":       enum("critical", "high", "medium"),
							"recommendation": str(),
						}),
					},
					"pivot_suggestions":          strList(),
					"differentiation_strategies": strList(),
					"go_to_market_advice":        strList(),
					"funding_feasibility":        enum("very_difficult", "difficult", "moderate", "feasible", "highly_feasible"),
					"recommended_next_steps":     strList(),
					"red_flags":                  strList(),
					"green_flags":                strList(),
					"executive_summary":          str(),
				}),
				Tags: []string{"verdict"},
			},
		},
	}
}
