package task

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"uniaudio/internal/artifact"
	"uniaudio/internal/gateway"
)

// gatewayCall is one captured request to the scripted gateway.
type gatewayCall struct {
	CallName   string         `json:"call_name"`
	APIProject string         `json:"api_project"`
	CallArgs   map[string]any `json:"call_args"`
}

// scriptedOrchestrator wires an orchestrator against a fake gateway that
// replies with the queued response bodies in order and records every call.
func scriptedOrchestrator(t *testing.T, responses ...string) (*Orchestrator, *[]gatewayCall) {
	t.Helper()
	var calls []gatewayCall
	i := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call gatewayCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		calls = append(calls, call)
		require.Less(t, i, len(responses), "unexpected gateway call %s", call.CallName)
		w.Write([]byte(responses[i]))
		i++
	}))
	t.Cleanup(srv.Close)

	gw := gateway.NewClient(gateway.Config{URL: srv.URL, APIKey: "k", AppID: "app"}, zap.NewNop())
	store := artifact.NewStore(t.TempDir(), artifact.DefaultMaxScratchFiles, zap.NewNop())
	return NewOrchestrator(gw, store, DefaultProjects(), zap.NewNop()), &calls
}

func envelope(t *testing.T, inner map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"success":   true,
		"resultObj": map[string]any{"result": inner},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestRunTranscription(t *testing.T) {
	o, calls := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-1"}),
		envelope(t, map[string]any{"status": "running"}),
		envelope(t, map[string]any{"status": "running"}),
		envelope(t, map[string]any{"status": "completed", "transcribed_text": "zh\tHello world"}),
	)
	run := o.NewRun(ASRSpec{AudioB64: "QUJD"})
	ctx := context.Background()

	ev := run.Advance(ctx)
	assert.Equal(t, StatePolling, ev.State)
	assert.Equal(t, "t-1", ev.TaskID)
	assert.False(t, ev.Terminal)

	for range 2 {
		ev = run.Advance(ctx)
		assert.Equal(t, StatePolling, ev.State)
		assert.False(t, ev.Terminal)
	}

	ev = run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateSucceeded, ev.State)

	out, ok := run.Outcome()
	require.True(t, ok)
	assert.Equal(t, "Hello world", out.Text)
	assert.Empty(t, out.ArtifactPath)

	require.Len(t, *calls, 4)
	assert.Equal(t, "submit_task", (*calls)[0].CallName)
	assert.Equal(t, DefaultProjects().Legacy, (*calls)[0].APIProject)
	for _, c := range (*calls)[1:] {
		assert.Equal(t, "poll_task", c.CallName)
		assert.Equal(t, "t-1", c.CallArgs["task_id"])
	}
}

func TestRunValidationFailsBeforeSubmit(t *testing.T) {
	o, calls := scriptedOrchestrator(t) // any gateway call would fail the test
	run := o.NewRun(TTSSpec{Text: "hi", PromptAudioB64: "QUJD"})

	ev := run.Advance(context.Background())
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	var verr *ValidationError
	require.ErrorAs(t, ev.Err, &verr)
	assert.Equal(t, "prompt_text", verr.Field)
	assert.Empty(t, *calls)
}

func TestRunRemoteFailure(t *testing.T) {
	o, _ := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-2"}),
		envelope(t, map[string]any{"status": "failed", "error_message": "model exploded"}),
	)
	run := o.NewRun(TTASpec{Text: "rain on a tin roof"})
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	var gerr *gateway.Error
	require.ErrorAs(t, ev.Err, &gerr)
	assert.Contains(t, gerr.Message, "model exploded")
}

func TestRunInlineArtifact(t *testing.T) {
	audio := []byte("RIFFfake")
	o, _ := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-3"}),
		envelope(t, map[string]any{
			"status":           "success",
			"output_audio_b64": base64.StdEncoding.EncodeToString(audio),
		}),
	)
	run := o.NewRun(ZeroShotSpec{Text: "hi", PromptAudioB64: "QUJD"})
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	require.Equal(t, StateSucceeded, ev.State)

	out, ok := run.Outcome()
	require.True(t, ok)
	require.NotEmpty(t, out.ArtifactPath)
	assert.Contains(t, filepath.Base(out.ArtifactPath), "zero_shot_tts")
	got, err := os.ReadFile(out.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestRunProxyDownload(t *testing.T) {
	payload := []byte("wav bytes")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	o, calls := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-4"}),
		envelope(t, map[string]any{
			"status":           "completed",
			"output_audio_url": "https://oss.example.com/bucket/out.wav?OSSAccessKeyId=AK&Expires=99&Signature=sig",
		}),
		envelope(t, map[string]any{
			"gzippedRaw": base64.StdEncoding.EncodeToString(buf.Bytes()),
		}),
	)
	run := o.NewRun(TTASpec{Text: "thunder"})
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	require.Equal(t, StateSucceeded, ev.State)

	out, _ := run.Outcome()
	got, err := os.ReadFile(out.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.Len(t, *calls, 3)
	dl := (*calls)[2]
	assert.Equal(t, "get_audio", dl.CallName)
	assert.Equal(t, "out.wav", dl.CallArgs["filename"])
	assert.Equal(t, "AK", dl.CallArgs["oss_access_key_id"])
}

func TestRunArtifactDecodeFailure(t *testing.T) {
	o, _ := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-5"}),
		envelope(t, map[string]any{
			"status":           "completed",
			"output_audio_url": "https://oss.example.com/out.wav?OSSAccessKeyId=AK&Expires=99&Signature=sig",
		}),
		// Download response without the payload field.
		envelope(t, map[string]any{"unexpected": true}),
	)
	run := o.NewRun(TTASpec{Text: "wind"})
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	var aerr *artifact.Error
	require.ErrorAs(t, ev.Err, &aerr)
}

func TestRunEmptyResult(t *testing.T) {
	o, _ := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-6"}),
		envelope(t, map[string]any{"status": "completed"}),
	)
	run := o.NewRun(TTASpec{Text: "silence"})
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	var aerr *artifact.Error
	require.ErrorAs(t, ev.Err, &aerr)
	assert.Contains(t, aerr.Reason, "no result")
}

func TestRunWithoutArtifactSkipsDownload(t *testing.T) {
	o, calls := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-7"}),
		envelope(t, map[string]any{
			"status":           "completed",
			"output_audio_url": "https://oss.example.com/out.wav?OSSAccessKeyId=AK&Expires=99&Signature=sig",
		}),
	)
	run := o.NewRun(
		PodcastChunkSpec{Text: " speaker_1:hi", PromptWavsB64: []string{"a", "b"}},
		WithoutArtifact(),
	)
	ctx := context.Background()

	run.Advance(ctx)
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateSucceeded, ev.State)

	out, ok := run.Outcome()
	require.True(t, ok)
	assert.Equal(t, "t-7", out.TaskID)
	assert.Empty(t, out.ArtifactPath)
	assert.Len(t, *calls, 2) // no get_audio call
}

func TestRunBudgetExhausted(t *testing.T) {
	o, calls := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-9"}),
	)
	run := o.NewRun(ASRSpec{AudioB64: "QUJD"})
	ctx := context.Background()

	ev := run.Advance(ctx)
	require.False(t, ev.Terminal)

	// Pretend the run has been polling far past its budget.
	run.started = time.Now().Add(-2 * time.Hour)

	ev = run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	var terr *TimeoutError
	require.ErrorAs(t, ev.Err, &terr)
	assert.Equal(t, "t-9", terr.TaskID)
	assert.Equal(t, TypeASR.Budget(), terr.Budget)

	// The budget check fires before any poll goes out, and the terminal
	// event stops all further gateway traffic.
	assert.Len(t, *calls, 1)
	run.Advance(ctx)
	assert.Len(t, *calls, 1)
}

func TestRunTerminalIsSticky(t *testing.T) {
	o, calls := scriptedOrchestrator(t,
		envelope(t, map[string]any{"task_id": "t-8"}),
		envelope(t, map[string]any{"status": "failed", "error_message": "nope"}),
	)
	run := o.NewRun(TTASpec{Text: "x"})
	ctx := context.Background()

	run.Advance(ctx)
	first := run.Advance(ctx)
	require.True(t, first.Terminal)

	for range 3 {
		again := run.Advance(ctx)
		assert.Equal(t, first, again)
	}
	assert.Len(t, *calls, 2)
	assert.True(t, run.Terminal())
}

func TestRunCancelledContext(t *testing.T) {
	o, calls := scriptedOrchestrator(t)
	run := o.NewRun(TTASpec{Text: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := run.Advance(ctx)
	require.True(t, ev.Terminal)
	assert.Equal(t, StateFailed, ev.State)
	assert.ErrorIs(t, ev.Err, context.Canceled)
	assert.Empty(t, *calls)
}
