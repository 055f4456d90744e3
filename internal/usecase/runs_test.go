package usecase

import (
	"context"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRunRegistry(time.Hour)
	req := testRequest()
	id := reg.NewRequestID(req.Ticker)

	state := reg.Submit(id, req)
	if state.Status != RunQueued {
		t.Fatalf("status = %q, want %q", state.Status, RunQueued)
	}

	reg.MarkRunning(id)
	state, ok := reg.Get(id)
	if !ok || state.Status != RunRunning {
		t.Fatalf("state after MarkRunning = %+v, ok=%v", state, ok)
	}

	reg.Complete(id, &RunResult{RunID: "r", Ticker: req.Ticker}, nil)
	state, _ = reg.Get(id)
	if state.Status != RunDone || state.Result == nil {
		t.Fatalf("state after Complete = %+v", state)
	}
}

func TestRegistryCompleteWithError(t *testing.T) {
	reg := NewRunRegistry(time.Hour)
	id := reg.NewRequestID("AAPL")
	reg.Submit(id, testRequest())

	reg.Complete(id, nil, models.ErrNoData)
	state, _ := reg.Get(id)
	if state.Status != RunFailed || state.Error == "" {
		t.Fatalf("failed state = %+v", state)
	}
}

func TestRegistryUnknownRun(t *testing.T) {
	reg := NewRunRegistry(time.Hour)
	if _, ok := reg.Get("nope"); ok {
		t.Fatalf("unknown run reported as present")
	}
}

func TestRunJobRecordsResult(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, &fakeFundamentalsSource{})
	reg := NewRunRegistry(time.Hour)
	job := NewRunPipelineJob(uc, reg, testLogger(t))

	id := reg.NewRequestID("AAPL")
	reg.Submit(id, testRequest())
	if err := job.Handle(context.Background(), RunJobPayload{RequestID: id, Request: testRequest()}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	state, _ := reg.Get(id)
	if state.Status != RunDone || state.Result == nil {
		t.Fatalf("state = %+v", state)
	}
}

func TestRunJobSwallowsPermanentFailures(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{bars: syntheticBars(150)}, &fakeFundamentalsSource{})
	reg := NewRunRegistry(time.Hour)
	job := NewRunPipelineJob(uc, reg, testLogger(t))

	req := testRequest()
	req.Start, req.End = "2024-12-31", "2024-01-02"
	id := reg.NewRequestID(req.Ticker)
	reg.Submit(id, req)

	// A malformed request must record failure but return nil so the
	// queue does not retry it.
	if err := job.Handle(context.Background(), RunJobPayload{RequestID: id, Request: req}); err != nil {
		t.Fatalf("permanent failure must not bubble to the queue: %v", err)
	}
	state, _ := reg.Get(id)
	if state.Status != RunFailed {
		t.Fatalf("state = %+v, want failed", state)
	}
}

func TestRunJobRetriesTransientFailures(t *testing.T) {
	uc, _ := newTestPipeline(t, &fakePriceSource{err: models.ErrNoData}, &fakeFundamentalsSource{})
	reg := NewRunRegistry(time.Hour)
	job := NewRunPipelineJob(uc, reg, testLogger(t))

	req := testRequest()
	id := reg.NewRequestID(req.Ticker)
	reg.Submit(id, req)
	if err := job.Handle(context.Background(), RunJobPayload{RequestID: id, Request: req}); err == nil {
		t.Fatalf("transient failure must bubble so the queue retries")
	}
}
