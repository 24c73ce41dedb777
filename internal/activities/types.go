package activities

import "reviewflow/internal/models"

type ResolveUploadInput struct {
	UserID   string `json:"user_id"`
	Filename string `json:"filename,omitempty"`
}

type ResolveUploadOutput struct {
	Path string `json:"path"`
}

type ConvertInput struct {
	UserID string `json:"user_id"`
	Path   string `json:"path"`
}

type ConvertOutput struct {
	Stats      models.NormalizeStats `json:"stats"`
	OutputPath string                `json:"output_path"`
}

type OrganizeInput struct {
	UserID  string `json:"user_id"`
	HWStart int    `json:"hw_start"`
	HWEnd   int    `json:"hw_end"`
}

type OrganizeOutput struct {
	Stats      models.OrganizeStats `json:"stats"`
	OutputPath string               `json:"output_path"`
}

type InferInput struct {
	UserID            string `json:"user_id"`
	RunID             string `json:"run_id"`
	UseScoringBackend bool   `json:"use_scoring_backend"`
}

type InferOutput struct {
	Stats      models.InferStats `json:"stats"`
	OutputPath string            `json:"output_path"`
}

type AnalyzeInput struct {
	UserID  string `json:"user_id"`
	HWStart int    `json:"hw_start"`
	HWEnd   int    `json:"hw_end"`
}

type AnalyzeOutput struct {
	Stats      models.AnalyzeStats `json:"stats"`
	OutputPath string              `json:"output_path,omitempty"`
}

type UpsertRunInput struct {
	Run models.PipelineRun `json:"run"`
}

type WriteRunSummaryInput struct {
	UserID  string            `json:"user_id"`
	Summary models.RunSummary `json:"summary"`
}

type WriteRunSummaryOutput struct {
	Path string `json:"path"`
}
