package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ResolveUploadActivity)
	w.RegisterActivity(a.ConvertActivity)
	w.RegisterActivity(a.OrganizeActivity)
	w.RegisterActivity(a.InferActivity)
	w.RegisterActivity(a.AnalyzeActivity)
	w.RegisterActivity(a.UpsertRunActivity)
	w.RegisterActivity(a.WriteRunSummaryActivity)
}
