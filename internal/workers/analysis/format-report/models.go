// internal/workers/analysis/format-report/models.go
package formatreport

import (
	"time"

	"mic-ai-service/internal/models"
)

type Input struct {
	SubmissionID    string             `json:"submissionId,omitempty"`
	Viability       models.StageResult `json:"viability"`
	Fit             models.StageResult `json:"fit"`
	Saturation      models.StageResult `json:"saturation"`
	Recommendations models.StageResult `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generatedAt"`
}

type Output struct {
	Report     string `json:"report"`
	ReportPath string `json:"reportPath"`
}
