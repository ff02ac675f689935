// internal/workers/analysis/market-analysis/models.go
package marketanalysis

import "mic-ai-service/internal/models"

type Input struct {
	SubmissionID string `json:"submissionId"`
	FilePath     string `json:"filePath"`
}

type Output struct {
	SubmissionID    string             `json:"submission_id"`
	Viability       models.StageResult `json:"viability"`
	Fit             models.StageResult `json:"fit"`
	Saturation      models.StageResult `json:"saturation"`
	Recommendations models.StageResult `json:"recommendations"`
	Report          string             `json:"-"`
	ReportPath      string             `json:"report_path,omitempty"`
}

// StageInput is everything a stage prompt may draw on. Later stages read
// the results of earlier ones; unset results render as N/A.
type StageInput struct {
	Idea       string
	Corpus     string
	Viability  models.StageResult
	Fit        models.StageResult
	Saturation models.StageResult
}
