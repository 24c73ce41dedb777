package workflows

type ReviewPipelineInput struct {
	RunID             string `json:"run_id"`
	UserID            string `json:"user_id"`
	Filename          string `json:"filename,omitempty"`
	UseScoringBackend bool   `json:"use_scoring_backend"`
	HWStart           int    `json:"hw_start"`
	HWEnd             int    `json:"hw_end"`
}
