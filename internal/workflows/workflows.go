package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"reviewflow/internal/activities"
	"reviewflow/internal/models"
)

const QueryGetRunStatus = "GetRunStatus"

// ReviewPipelineWorkflow drives one labeling run through its stages:
// converting, organizing, inferring, analyzing. Each stage persists its
// artifact before the next stage starts, and every transition is mirrored
// to the run store so status queries survive worker restarts.
//
// The workflow ID is derived from the user, so Temporal itself rejects a
// second start while a run is still open.
func ReviewPipelineWorkflow(ctx workflow.Context, input ReviewPipelineInput) (string, error) {
	progress := models.PipelineRun{
		RunID:     input.RunID,
		UserID:    input.UserID,
		Stage:     models.StageConverting,
		Message:   "resolving upload",
		StartedAt: workflow.Now(ctx),
		UpdatedAt: workflow.Now(ctx),
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetRunStatus, func() (models.PipelineRun, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	summary := models.RunSummary{}

	// setStage replaces the whole progress struct in one assignment so the
	// query handler never serves a half-updated transition.
	setStage := func(stage, message string) {
		next := progress
		next.Stage = stage
		next.Message = message
		next.Summary = &summary
		next.UpdatedAt = workflow.Now(ctx)
		progress = next
		_ = workflow.ExecuteActivity(ctx, "UpsertRunActivity", activities.UpsertRunInput{Run: progress}).Get(ctx, nil)
	}
	fail := func(message string, err error) (string, error) {
		next := progress
		next.Stage = models.StageFailed
		next.Message = message
		next.Error = err.Error()
		next.Summary = &summary
		next.UpdatedAt = workflow.Now(ctx)
		progress = next
		_ = workflow.ExecuteActivity(ctx, "UpsertRunActivity", activities.UpsertRunInput{Run: progress}).Get(ctx, nil)
		return "", err
	}

	setStage(models.StageConverting, "resolving upload")
	var resolveOut activities.ResolveUploadOutput
	if err := workflow.ExecuteActivity(ctx, "ResolveUploadActivity", activities.ResolveUploadInput{
		UserID:   input.UserID,
		Filename: input.Filename,
	}).Get(ctx, &resolveOut); err != nil {
		return fail("resolving upload", err)
	}

	var convertOut activities.ConvertOutput
	if err := workflow.ExecuteActivity(ctx, "ConvertActivity", activities.ConvertInput{
		UserID: input.UserID,
		Path:   resolveOut.Path,
	}).Get(ctx, &convertOut); err != nil {
		return fail("converting records", err)
	}
	summary.Convert = &convertOut.Stats

	setStage(models.StageOrganizing, "grouping reviews by assignment")
	var organizeOut activities.OrganizeOutput
	if err := workflow.ExecuteActivity(ctx, "OrganizeActivity", activities.OrganizeInput{
		UserID:  input.UserID,
		HWStart: input.HWStart,
		HWEnd:   input.HWEnd,
	}).Get(ctx, &organizeOut); err != nil {
		return fail("grouping reviews", err)
	}
	summary.Organize = &organizeOut.Stats

	setStage(models.StageInferring, "labeling feedback")
	var inferOut activities.InferOutput
	if err := workflow.ExecuteActivity(ctx, "InferActivity", activities.InferInput{
		UserID:            input.UserID,
		RunID:             input.RunID,
		UseScoringBackend: input.UseScoringBackend,
	}).Get(ctx, &inferOut); err != nil {
		return fail("labeling feedback", err)
	}
	summary.Infer = &inferOut.Stats
	summary.Output = inferOut.OutputPath

	setStage(models.StageAnalyzing, "correlating with score table")
	var analyzeOut activities.AnalyzeOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeActivity", activities.AnalyzeInput{
		UserID:  input.UserID,
		HWStart: input.HWStart,
		HWEnd:   input.HWEnd,
	}).Get(ctx, &analyzeOut); err != nil {
		// Analysis is best effort; labeling output is already complete.
		summary.Analyze = &models.AnalyzeStats{Skipped: true, SkipReason: err.Error()}
	} else {
		summary.Analyze = &analyzeOut.Stats
	}

	_ = workflow.ExecuteActivity(ctx, "WriteRunSummaryActivity", activities.WriteRunSummaryInput{
		UserID:  input.UserID,
		Summary: summary,
	}).Get(ctx, nil)

	setStage(models.StageComplete, "run complete")
	return "completed", nil
}
