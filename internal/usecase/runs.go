package usecase

import (
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/service/cache"
)

// Run lifecycle states for async pipeline runs.
const (
	RunQueued  = "queued"
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)

// RunState is the dashboard-visible record of an async pipeline run.
type RunState struct {
	RequestID string                    `json:"request_id"`
	Status    string                    `json:"status"`
	Submitted time.Time                 `json:"submitted"`
	Request   models.RunPipelineRequest `json:"request"`
	Result    *RunResult                `json:"result,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// RunRegistry tracks async run states in a TTL cache so finished runs
// stay queryable for a while and then age out on their own.
type RunRegistry struct {
	store *cache.TTLCache
	ttl   time.Duration
}

func NewRunRegistry(ttl time.Duration) *RunRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RunRegistry{store: cache.NewTTLCache(), ttl: ttl}
}

// NewRequestID mints a registry key for a submitted run.
func (r *RunRegistry) NewRequestID(ticker string) string {
	return fmt.Sprintf("%s-%d", ticker, time.Now().UnixNano())
}

// Submit records a queued run and returns its state.
func (r *RunRegistry) Submit(requestID string, req models.RunPipelineRequest) RunState {
	state := RunState{
		RequestID: requestID,
		Status:    RunQueued,
		Submitted: time.Now().UTC(),
		Request:   req,
	}
	r.store.Set(requestID, state, r.ttl)
	return state
}

// MarkRunning flips a queued run to running.
func (r *RunRegistry) MarkRunning(requestID string) {
	if state, ok := r.Get(requestID); ok {
		state.Status = RunRunning
		r.store.Set(requestID, state, r.ttl)
	}
}

// Complete stores the terminal state of a run.
func (r *RunRegistry) Complete(requestID string, result *RunResult, runErr error) {
	state, ok := r.Get(requestID)
	if !ok {
		state = RunState{RequestID: requestID, Submitted: time.Now().UTC()}
	}
	if runErr != nil {
		state.Status = RunFailed
		state.Error = runErr.Error()
	} else {
		state.Status = RunDone
		state.Result = result
	}
	r.store.Set(requestID, state, r.ttl)
}

// Get returns the current state of a run.
func (r *RunRegistry) Get(requestID string) (RunState, bool) {
	v, ok := r.store.Get(requestID)
	if !ok {
		return RunState{}, false
	}
	state, ok := v.(RunState)
	return state, ok
}
