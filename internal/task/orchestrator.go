package task

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"uniaudio/internal/artifact"
	"uniaudio/internal/gateway"
)

// DefaultPollInterval is the cadence hosts are expected to drive runs at.
const DefaultPollInterval = 2 * time.Second

// TimeoutError reports a run that exhausted its wall-clock budget without
// reaching a terminal status.
type TimeoutError struct {
	TaskID string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s: no terminal status within %s", e.TaskID, e.Budget)
}

// Orchestrator creates runs. It holds the collaborators every run shares
// and no per-run state, so one instance serves any number of concurrent
// runs.
type Orchestrator struct {
	gw       *gateway.Client
	store    *artifact.Store
	projects Projects
	interval time.Duration
	logger   *zap.Logger
}

func NewOrchestrator(gw *gateway.Client, store *artifact.Store, projects Projects, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		gw:       gw,
		store:    store,
		projects: projects,
		interval: DefaultPollInterval,
		logger:   logger,
	}
}

// RunOption tweaks a single run.
type RunOption func(*Run)

// WithoutArtifact disables artifact download on success. The run still
// reports the remote task id, which is what delegated composition needs.
func WithoutArtifact() RunOption {
	return func(r *Run) { r.skipArtifact = true }
}

// Run is one task's trip through the lifecycle. It is an explicit state
// machine: the host calls Advance once per tick and renders the returned
// event. A Run never spawns goroutines and at most one gateway call is in
// flight at any time. Not safe for concurrent use; drive it from one
// goroutine.
type Run struct {
	o            *Orchestrator
	spec         Spec
	project      string
	skipArtifact bool

	state    State
	taskID   string
	started  time.Time
	terminal *Event
	outcome  *Outcome
}

// NewRun builds a run in the created state. Nothing is sent until the first
// Advance.
func (o *Orchestrator) NewRun(spec Spec, opts ...RunOption) *Run {
	r := &Run{
		o:       o,
		spec:    spec,
		project: o.projects.Route(spec.Type()),
		state:   StateCreated,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the run's current lifecycle position.
func (r *Run) State() State { return r.state }

// TaskID returns the gateway-assigned id, empty before submission.
func (r *Run) TaskID() string { return r.taskID }

// Terminal reports whether the run has finished.
func (r *Run) Terminal() bool { return r.terminal != nil }

// Outcome returns the result of a succeeded run.
func (r *Run) Outcome() (*Outcome, bool) {
	return r.outcome, r.outcome != nil
}

// Advance performs exactly one lifecycle step and returns the resulting
// event. Once a terminal event has been produced it is returned unchanged
// on every further call; no more gateway calls are issued.
func (r *Run) Advance(ctx context.Context) Event {
	if r.terminal != nil {
		return *r.terminal
	}
	if err := ctx.Err(); err != nil {
		return r.fail(fmt.Errorf("run cancelled: %w", err))
	}

	switch r.state {
	case StateCreated:
		return r.submit(ctx)
	case StatePolling:
		return r.pollOnce(ctx)
	default:
		return r.fail(fmt.Errorf("run in unexpected state %s", r.state))
	}
}

func (r *Run) submit(ctx context.Context) Event {
	if err := r.spec.Validate(); err != nil {
		// Validation failures never reach the gateway.
		return r.fail(err)
	}
	r.state = StateSubmitting
	args, err := r.spec.Args()
	if err != nil {
		return r.fail(err)
	}
	id, err := r.o.gw.Submit(ctx, args, r.project)
	if err != nil {
		return r.fail(fmt.Errorf("submit %s: %w", r.spec.Type(), err))
	}
	r.taskID = id
	r.started = time.Now()
	r.state = StatePolling
	return Event{
		State:   StatePolling,
		TaskID:  id,
		Message: "task submitted",
	}
}

func (r *Run) pollOnce(ctx context.Context) Event {
	elapsed := time.Since(r.started)
	budget := r.spec.Type().Budget()
	if elapsed > budget {
		return r.fail(&TimeoutError{TaskID: r.taskID, Budget: budget})
	}

	status, result, err := r.o.gw.Poll(ctx, r.taskID, r.project)
	if err != nil {
		return r.fail(fmt.Errorf("poll %s: %w", r.taskID, err))
	}
	switch status {
	case gateway.StatusFailed:
		msg, _ := result["error_message"].(string)
		if msg == "" {
			msg = "remote task failed"
		}
		return r.fail(&gateway.Error{CallName: "poll_task", Message: msg})
	case gateway.StatusSucceeded:
		return r.succeed(ctx, result)
	default:
		return Event{
			State:   StatePolling,
			TaskID:  r.taskID,
			Elapsed: elapsed,
			Message: fmt.Sprintf("generating (%ds elapsed)", int(elapsed.Seconds())),
		}
	}
}

func (r *Run) succeed(ctx context.Context, result map[string]any) Event {
	outcome := &Outcome{TaskID: r.taskID}

	if text, ok := result["transcribed_text"].(string); ok {
		// The model reports "Language\tText".
		if i := strings.Index(text, "\t"); i >= 0 {
			text = text[i+1:]
		}
		outcome.Text = text
	}
	if text, ok := result["edited_text"].(string); ok {
		outcome.Text = text
	}

	if !r.skipArtifact {
		p, err := r.collectArtifact(ctx, result)
		if err != nil {
			return r.fail(err)
		}
		outcome.ArtifactPath = p
	}
	if outcome.Text == "" && outcome.ArtifactPath == "" && !r.skipArtifact {
		return r.fail(&artifact.Error{Reason: "task succeeded but returned no result"})
	}

	r.outcome = outcome
	r.state = StateSucceeded
	ev := Event{
		State:    StateSucceeded,
		TaskID:   r.taskID,
		Elapsed:  time.Since(r.started),
		Message:  "done",
		Terminal: true,
	}
	r.terminal = &ev
	r.o.logger.Info("run succeeded",
		zap.String("task_id", r.taskID),
		zap.String("task_type", string(r.spec.Type())),
		zap.Duration("elapsed", ev.Elapsed))
	return ev
}

// collectArtifact materializes a succeeded task's audio or video, if the
// result carries any. Inline base64 wins over a download URL.
func (r *Run) collectArtifact(ctx context.Context, result map[string]any) (string, error) {
	prefix := string(r.spec.Type())
	if b64, ok := result["output_audio_b64"].(string); ok && b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return "", &artifact.Error{Reason: "inline audio is not valid base64", Err: err}
		}
		return r.o.store.Save(prefix, ".wav", raw)
	}
	if u, ok := result["output_audio_url"].(string); ok && u != "" {
		raw, err := r.o.gw.Download(ctx, u, r.project)
		if err != nil {
			return "", wrapArtifact("audio download failed", err)
		}
		return r.o.store.Save(prefix, ".wav", raw)
	}
	if u, ok := result["output_video_url"].(string); ok && u != "" {
		raw, err := r.o.gw.Download(ctx, u, r.project)
		if err != nil {
			return "", wrapArtifact("video download failed", err)
		}
		return r.o.store.Save(prefix, ".mp4", raw)
	}
	return "", nil
}

// wrapArtifact keeps already-typed artifact errors intact and wraps
// everything else so download failures surface under one error kind.
func wrapArtifact(reason string, err error) error {
	var ae *artifact.Error
	if errors.As(err, &ae) {
		return err
	}
	return &artifact.Error{Reason: reason, Err: err}
}

func (r *Run) fail(err error) Event {
	r.state = StateFailed
	ev := Event{
		State:    StateFailed,
		TaskID:   r.taskID,
		Elapsed:  elapsedSince(r.started),
		Message:  err.Error(),
		Err:      err,
		Terminal: true,
	}
	r.terminal = &ev
	r.o.logger.Warn("run failed",
		zap.String("task_id", r.taskID),
		zap.String("task_type", string(r.spec.Type())),
		zap.Error(err))
	return ev
}

func elapsedSince(t time.Time) time.Duration {
	if t.IsZero() {
		return 0
	}
	return time.Since(t)
}

// Wait drives the run to completion at the orchestrator's poll cadence and
// returns the outcome or the terminal error. It is the blocking form of the
// tick-driven interface, for hosts with nothing else to do.
func (r *Run) Wait(ctx context.Context) (*Outcome, error) {
	ev := r.Advance(ctx)
	if ev.Terminal {
		return r.waitResult(ev)
	}
	ticker := time.NewTicker(r.o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.fail(fmt.Errorf("run cancelled: %w", ctx.Err()))
			return nil, ctx.Err()
		case <-ticker.C:
			ev = r.Advance(ctx)
			if ev.Terminal {
				return r.waitResult(ev)
			}
		}
	}
}

func (r *Run) waitResult(ev Event) (*Outcome, error) {
	if ev.State == StateSucceeded {
		return r.outcome, nil
	}
	return nil, ev.Err
}
