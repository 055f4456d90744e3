package usecase

import (
	"context"
	"errors"
	"fmt"

	"StockCast/internal/domain/models"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"
)

// RunJobType is the queue message type for async pipeline runs.
const RunJobType = "pipeline.run"

// RunJobPayload is the queued form of a dashboard run request.
type RunJobPayload struct {
	RequestID string                    `json:"request_id"`
	Request   models.RunPipelineRequest `json:"request"`
}

// RunPipelineJob executes queued pipeline runs on the worker pool. Each
// run already works in its own directory, so concurrent workers are safe.
type RunPipelineJob struct {
	pipeline *PipelineUseCase
	registry *RunRegistry
	l        *applogger.Logger
}

func NewRunPipelineJob(pipeline *PipelineUseCase, registry *RunRegistry, l *applogger.Logger) *RunPipelineJob {
	return &RunPipelineJob{pipeline: pipeline, registry: registry, l: l}
}

func (j *RunPipelineJob) Name() string { return "pipeline-run" }

func (j *RunPipelineJob) Type() string { return RunJobType }

// Handle runs the pipeline and records the terminal state. Malformed
// requests are swallowed after recording failure so the queue does not
// retry what can never succeed.
func (j *RunPipelineJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RunJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse run payload: %w", err)
	}
	j.registry.MarkRunning(p.RequestID)

	result, err := j.pipeline.Run(ctx, p.Request)
	j.registry.Complete(p.RequestID, result, err)
	if err != nil {
		j.l.Error("queued pipeline run failed",
			applogger.String("request_id", p.RequestID),
			applogger.String("ticker", p.Request.Ticker),
			applogger.Error(err),
		)
		if isPermanent(err) {
			return nil
		}
		return err
	}
	return nil
}

// isPermanent reports whether retrying the run cannot help.
func isPermanent(err error) bool {
	return errors.Is(err, models.ErrMalformedInput) || errors.Is(err, models.ErrNoFeatures)
}
