package orchestration

import (
	"context"
	"time"

	"github.com/alanlujan91/DemARK/internal/models"
	"github.com/alanlujan91/DemARK/internal/theory"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the queue the analysis worker polls
const TaskQueue = "demark-analysis"

// Activities wraps the theory service so its operations can run as
// Temporal activities.
type Activities struct {
	Service *theory.Service
}

// FetchSeries fetches and persists one series as an activity
func (a *Activities) FetchSeries(ctx context.Context, code string, start, end time.Time) (int, error) {
	obs, err := a.Service.FetchSeries(ctx, code, start, end)
	if err != nil {
		return 0, err
	}
	return len(obs), nil
}

// RunAnalysis runs the theory comparison as an activity
func (a *Activities) RunAnalysis(ctx context.Context, req theory.AnalysisRequest) (*models.Analysis, error) {
	return a.Service.RunAnalysis(ctx, req)
}

// AnalysisWorkflow fetches both series, then estimates and stores the
// comparison. The fetches run first so a flaky data source is retried
// before any estimation work starts.
func AnalysisWorkflow(ctx workflow.Context, req theory.AnalysisRequest) (*models.Analysis, error) {
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	consumptionSeries := req.ConsumptionSeries
	if consumptionSeries == "" {
		consumptionSeries = theory.DefaultConsumptionSeries
	}
	incomeSeries := req.IncomeSeries
	if incomeSeries == "" {
		incomeSeries = theory.DefaultIncomeSeries
	}

	var a *Activities
	var count int
	if err := workflow.ExecuteActivity(ctx, a.FetchSeries, consumptionSeries, req.Start, req.End).Get(ctx, &count); err != nil {
		return nil, err
	}
	if err := workflow.ExecuteActivity(ctx, a.FetchSeries, incomeSeries, req.Start, req.End).Get(ctx, &count); err != nil {
		return nil, err
	}

	var analysis models.Analysis
	if err := workflow.ExecuteActivity(ctx, a.RunAnalysis, req).Get(ctx, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
