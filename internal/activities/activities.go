package activities

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"reviewflow/internal/analysis"
	"reviewflow/internal/config"
	"reviewflow/internal/labels"
	"reviewflow/internal/models"
	"reviewflow/internal/review"
	"reviewflow/internal/scoring"
	"reviewflow/internal/storage"
	"reviewflow/internal/util"
)

// Stage artifact filenames inside a user's output workspace. Each stage
// writes its own file and never touches the earlier ones.
const (
	ConvertedFile  = "step1_converted.json"
	OrganizedFile  = "step2_organized.json"
	ResultFile     = "final_result.json"
	AnalysisFile   = "analysis.json"
	UncertainFile  = "uncertain_cases.json"
	RunSummaryFile = "run_summary.json"
)

const (
	ModelScored    = "scored"
	ModelRuleBased = "rule-based"
)

type Activities struct {
	cfg        config.Config
	runRepo    *storage.RunRepo
	reviewRepo *storage.ReviewRepo
	scorers    *scoring.Manager
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	sm, err := scoring.NewManager(cfg.Scorers)
	if err != nil {
		return nil, err
	}
	a := &Activities{cfg: cfg, scorers: sm}
	if db != nil {
		a.runRepo = storage.NewRunRepo(db)
		a.reviewRepo = storage.NewReviewRepo(db)
	}
	return a, nil
}

func (a *Activities) userInDir(userID string) string {
	return filepath.Join(a.cfg.DataInRoot, userID)
}

func (a *Activities) userOutDir(userID string) string {
	return filepath.Join(a.cfg.DataOutRoot, userID)
}

// ResolveUploadActivity maps a requested filename to a path inside the
// user's input workspace. An empty filename picks the most recent upload.
func (a *Activities) ResolveUploadActivity(ctx context.Context, in ResolveUploadInput) (ResolveUploadOutput, error) {
	_ = ctx
	dir := a.userInDir(in.UserID)
	name := in.Filename
	if name == "" {
		latest, err := util.LatestFile(dir, ".csv")
		if err != nil {
			return ResolveUploadOutput{}, err
		}
		name = latest
	}
	if name == "" {
		return ResolveUploadOutput{}, util.ErrNoUpload
	}
	path := util.SafeJoin(dir, name)
	return ResolveUploadOutput{Path: path}, nil
}

// ConvertActivity normalizes the raw CSV into canonical review records and
// persists them as the first stage artifact.
func (a *Activities) ConvertActivity(ctx context.Context, in ConvertInput) (ConvertOutput, error) {
	_ = ctx
	table, err := review.ReadTable(in.Path)
	if err != nil {
		return ConvertOutput{}, err
	}
	records, stats := review.Normalize(table)
	outPath := filepath.Join(a.userOutDir(in.UserID), ConvertedFile)
	if err := util.WriteJSONAtomic(outPath, records); err != nil {
		return ConvertOutput{}, err
	}
	return ConvertOutput{Stats: stats, OutputPath: outPath}, nil
}

// OrganizeActivity groups the converted records by assignment, author and
// reviewer, applying the homework range filter.
func (a *Activities) OrganizeActivity(ctx context.Context, in OrganizeInput) (OrganizeOutput, error) {
	_ = ctx
	var records []models.ReviewRecord
	inPath := filepath.Join(a.userOutDir(in.UserID), ConvertedFile)
	if err := util.ReadJSON(inPath, &records); err != nil {
		return OrganizeOutput{}, err
	}
	grouped := review.Group(records, in.HWStart, in.HWEnd)
	outPath := filepath.Join(a.userOutDir(in.UserID), OrganizedFile)
	if err := util.WriteJSONAtomic(outPath, grouped); err != nil {
		return OrganizeOutput{}, err
	}
	return OrganizeOutput{Stats: review.GroupStats(len(records), grouped), OutputPath: outPath}, nil
}

// InferActivity attaches quality labels to every round of the grouped
// reviews. An unreachable scoring backend degrades to the rule-based
// classifier; a malformed backend response fails the stage.
func (a *Activities) InferActivity(ctx context.Context, in InferInput) (InferOutput, error) {
	var grouped models.GroupedReviews
	inPath := filepath.Join(a.userOutDir(in.UserID), OrganizedFile)
	if err := util.ReadJSON(inPath, &grouped); err != nil {
		return InferOutput{}, err
	}

	hwNames := make([]string, 0, len(grouped))
	for hw := range grouped {
		hwNames = append(hwNames, hw)
	}
	sort.Strings(hwNames)

	// Flatten rounds in a stable order so backend batches and label
	// attachment line up.
	type roundRef struct {
		hw, group, round int
	}
	var texts []string
	var refs []roundRef
	for hwIdx, hw := range hwNames {
		for g := range grouped[hw] {
			for r := range grouped[hw][g].Rounds {
				texts = append(texts, grouped[hw][g].Rounds[r].Feedback)
				refs = append(refs, roundRef{hw: hwIdx, group: g, round: r})
			}
		}
	}

	preds, modelUsed, err := a.classify(ctx, texts, in.UseScoringBackend)
	if err != nil {
		return InferOutput{}, err
	}

	for i, ref := range refs {
		rel, con, ctr := preds[i].Relevance, preds[i].Concreteness, preds[i].Constructive
		entry := &grouped[hwNames[ref.hw]][ref.group].Rounds[ref.round]
		entry.Relevance = &rel
		entry.Concreteness = &con
		entry.Constructive = &ctr
	}

	outPath := filepath.Join(a.userOutDir(in.UserID), ResultFile)
	if err := util.WriteJSONAtomic(outPath, grouped); err != nil {
		return InferOutput{}, err
	}

	// Confidence diagnostics only make sense for scored probabilities; the
	// rule fallback reports hard 0/1 confidences.
	var uncertain []labels.UncertainCase
	if modelUsed == ModelScored {
		uncertain = labels.ScanUncertain(texts, preds, a.cfg.UncertainLowThreshold, a.cfg.UncertainHighThreshold)
	}
	uncertainPath := filepath.Join(a.userOutDir(in.UserID), UncertainFile)
	if uncertain == nil {
		uncertain = []labels.UncertainCase{}
	}
	if err := util.WriteJSONAtomic(uncertainPath, uncertain); err != nil {
		return InferOutput{}, err
	}

	if a.reviewRepo != nil {
		rows := make([]models.LabeledReview, 0, len(refs))
		for i, ref := range refs {
			group := grouped[hwNames[ref.hw]][ref.group]
			entry := group.Rounds[ref.round]
			rows = append(rows, models.LabeledReview{
				RunID:                  in.RunID,
				UserID:                 in.UserID,
				Homework:               group.Assignment,
				Author:                 group.Author,
				Reviewer:               group.Reviewer,
				Round:                  entry.Round,
				Feedback:               entry.Feedback,
				Relevance:              preds[i].Relevance,
				Concreteness:           preds[i].Concreteness,
				Constructive:           preds[i].Constructive,
				RelevanceConfidence:    preds[i].RelevanceConfidence,
				ConcretenessConfidence: preds[i].ConcretenessConfidence,
				ConstructiveConfidence: preds[i].ConstructiveConfidence,
			})
		}
		if err := a.reviewRepo.ReplaceRunReviews(ctx, in.RunID, rows); err != nil {
			return InferOutput{}, err
		}
	}

	total := 0
	for _, t := range texts {
		if t != "" {
			total++
		}
	}
	return InferOutput{
		Stats: models.InferStats{
			TotalFeedbacks: total,
			HomeworkCount:  len(hwNames),
			ModelUsed:      modelUsed,
			UncertainCases: len(uncertain),
		},
		OutputPath: outPath,
	}, nil
}

func (a *Activities) classify(ctx context.Context, texts []string, useBackend bool) ([]models.LabelPrediction, string, error) {
	scorer := a.scorers.First()
	if !useBackend || scorer == nil {
		return labels.RuleClassify(texts), ModelRuleBased, nil
	}
	engine := labels.NewEngine(scorer, a.cfg.KeywordConfidenceFloor)
	preds, err := engine.Classify(ctx, texts, a.cfg.Thresholds())
	if errors.Is(err, util.ErrBackendUnavailable) {
		return labels.RuleClassify(texts), ModelRuleBased, nil
	}
	if err != nil {
		return nil, "", err
	}
	return preds, ModelScored, nil
}

// AnalyzeActivity correlates labeled reviews with the external score table.
// A missing score table skips the analysis instead of failing the run.
func (a *Activities) AnalyzeActivity(ctx context.Context, in AnalyzeInput) (AnalyzeOutput, error) {
	_ = ctx
	scores, err := analysis.LoadScoreTable(a.cfg.ScoreTablePath, in.HWStart, in.HWEnd)
	if err != nil {
		return AnalyzeOutput{
			Stats: models.AnalyzeStats{Skipped: true, SkipReason: fmt.Sprintf("score table unavailable: %v", err)},
		}, nil
	}

	var grouped models.GroupedReviews
	inPath := filepath.Join(a.userOutDir(in.UserID), ResultFile)
	if err := util.ReadJSON(inPath, &grouped); err != nil {
		return AnalyzeOutput{}, err
	}

	report := analysis.Analyze(grouped, scores, in.HWStart, in.HWEnd)
	outPath := filepath.Join(a.userOutDir(in.UserID), AnalysisFile)
	if err := util.WriteJSONAtomic(outPath, report); err != nil {
		return AnalyzeOutput{}, err
	}
	return AnalyzeOutput{Stats: report.Summary, OutputPath: outPath}, nil
}

// UpsertRunActivity records a stage transition so status survives worker
// restarts and workflow history truncation.
func (a *Activities) UpsertRunActivity(ctx context.Context, in UpsertRunInput) error {
	if a.runRepo == nil {
		return nil
	}
	return a.runRepo.UpsertRun(ctx, in.Run)
}

func (a *Activities) WriteRunSummaryActivity(ctx context.Context, in WriteRunSummaryInput) (WriteRunSummaryOutput, error) {
	_ = ctx
	path := filepath.Join(a.userOutDir(in.UserID), RunSummaryFile)
	if err := util.WriteJSONAtomic(path, in.Summary); err != nil {
		return WriteRunSummaryOutput{}, err
	}
	return WriteRunSummaryOutput{Path: path}, nil
}
