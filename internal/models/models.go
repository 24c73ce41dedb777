package models

import "time"

// AuthorUnknown is the sentinel used when a row carries no usable author.
// Rows reviewed anonymously (or self-reviews) keep it on purpose; only the
// reviewer field is mandatory.
const AuthorUnknown = "NULL"

type ReviewRecord struct {
	Author     string `json:"Author"`
	Reviewer   string `json:"Reviewer"`
	Feedback   string `json:"Feedback"`
	Time       string `json:"Time"`
	Assignment string `json:"Assignment"`
	Round      int    `json:"Round"`
}

type RoundEntry struct {
	Round        int    `json:"Round"`
	Time         string `json:"Time"`
	Feedback     string `json:"Feedback"`
	Relevance    *int   `json:"Relevance,omitempty"`
	Concreteness *int   `json:"Concreteness,omitempty"`
	Constructive *int   `json:"Constructive,omitempty"`
}

// AssignmentGroup folds every review a reviewer gave one author within a
// single assignment. Rounds keep raw input order.
type AssignmentGroup struct {
	Assignment string       `json:"Assignment"`
	Author     string       `json:"Author"`
	Reviewer   string       `json:"Reviewer"`
	Rounds     []RoundEntry `json:"Round"`
}

// GroupedReviews maps an assignment name ("HW3") to its groups.
type GroupedReviews map[string][]AssignmentGroup

type LabelPrediction struct {
	Relevance              int     `json:"relevance"`
	Concreteness           int     `json:"concreteness"`
	Constructive           int     `json:"constructive"`
	RelevanceConfidence    float64 `json:"relevance_confidence"`
	ConcretenessConfidence float64 `json:"concreteness_confidence"`
	ConstructiveConfidence float64 `json:"constructive_confidence"`

	// KeywordOverride records that the suggestion-keyword rule forced the
	// constructive label; ScoredConstructive keeps the backend's original
	// probability so the uncertainty scan can still see it.
	KeywordOverride    bool    `json:"keyword_override,omitempty"`
	ScoredConstructive float64 `json:"scored_constructive,omitempty"`
}

type NormalizeStats struct {
	TotalRows        int      `json:"total_rows"`
	ConvertedRecords int      `json:"converted_records"`
	UniqueAuthors    int      `json:"unique_authors"`
	UniqueReviewers  int      `json:"unique_reviewers"`
	Warnings         []string `json:"warnings,omitempty"`
}

type OrganizeStats struct {
	InputRecords     int            `json:"input_records"`
	HomeworkCount    int            `json:"homework_count"`
	TotalAssignments int            `json:"total_assignments"`
	HWBreakdown      map[string]int `json:"hw_breakdown"`
}

type InferStats struct {
	TotalFeedbacks int    `json:"total_feedbacks"`
	HomeworkCount  int    `json:"homework_count"`
	ModelUsed      string `json:"model_used"`
	UncertainCases int    `json:"uncertain_cases"`
}

// Pipeline run stages. Failed is absorbing and reachable from every
// non-terminal stage.
const (
	StageIdle       = "idle"
	StageConverting = "converting"
	StageOrganizing = "organizing"
	StageInferring  = "inferring"
	StageAnalyzing  = "analyzing"
	StageComplete   = "complete"
	StageFailed     = "failed"
)

type RunSummary struct {
	Convert  *NormalizeStats `json:"convert,omitempty"`
	Organize *OrganizeStats  `json:"organize,omitempty"`
	Infer    *InferStats     `json:"infer,omitempty"`
	Analyze  *AnalyzeStats   `json:"analyze,omitempty"`
	Output   string          `json:"output_file,omitempty"`
}

type PipelineRun struct {
	RunID     string      `json:"run_id"`
	UserID    string      `json:"user_id"`
	Stage     string      `json:"stage"`
	Message   string      `json:"message"`
	Error     string      `json:"error,omitempty"`
	Summary   *RunSummary `json:"result_summary,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ScoreRow is one student row of the external score table, read-only input
// to the correlation analysis.
type ScoreRow struct {
	StudentID string         `json:"id"`
	Name      string         `json:"name"`
	Pre       int            `json:"pre"`
	Midterm   int            `json:"midterm"`
	Final     int            `json:"final"`
	HWScores  map[string]int `json:"hw_scores"`
}

type AnalyzeStats struct {
	TotalStudents      int    `json:"total_students"`
	StudentsWithReview int    `json:"students_with_reviews"`
	TotalReviewsGiven  int    `json:"total_reviews_given"`
	Skipped            bool   `json:"skipped,omitempty"`
	SkipReason         string `json:"skip_reason,omitempty"`
}

// LabeledReview is one scored feedback entry flattened for persistence.
type LabeledReview struct {
	RunID                  string  `json:"run_id"`
	UserID                 string  `json:"user_id"`
	Homework               string  `json:"homework"`
	Author                 string  `json:"author"`
	Reviewer               string  `json:"reviewer"`
	Round                  int     `json:"round"`
	Feedback               string  `json:"feedback"`
	Relevance              int     `json:"relevance"`
	Concreteness           int     `json:"concreteness"`
	Constructive           int     `json:"constructive"`
	RelevanceConfidence    float64 `json:"relevance_confidence"`
	ConcretenessConfidence float64 `json:"concreteness_confidence"`
	ConstructiveConfidence float64 `json:"constructive_confidence"`
}
