// Package handlers exposes task submission and progress over HTTP.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uniaudio/internal/catalog"
	"uniaudio/internal/task"
)

// TaskHandler launches single-task runs and reports their progress.
type TaskHandler struct {
	orch     *task.Orchestrator
	voices   *catalog.Catalog
	registry *Registry
	logger   *zap.Logger
}

func NewTaskHandler(orch *task.Orchestrator, voices *catalog.Catalog, registry *Registry, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		orch:     orch,
		voices:   voices,
		registry: registry,
		logger:   logger,
	}
}

// CreateTaskRequest carries the union of per-task-type parameters. Audio
// references travel as base64.
type CreateTaskRequest struct {
	TaskType string `json:"task_type" binding:"required"`

	Text           string   `json:"text"`
	AudioB64       string   `json:"audio_b64"`
	Instruction    string   `json:"instruction"`
	PromptText     string   `json:"prompt_text"`
	PromptAudioB64 string   `json:"prompt_audio_b64"`
	PromptWavsB64  []string `json:"prompt_wavs_b64"`

	InstructType string `json:"instruct_type"`
	Emotion      string `json:"emotion"`
	Dialect      string `json:"dialect"`
	IPName       string `json:"ip_name"`
	Style        string `json:"style"`
	Speed        string `json:"speed"`
	Pitch        string `json:"pitch"`
	Volume       string `json:"volume"`

	Genre       string  `json:"genre"`
	Mood        string  `json:"mood"`
	Instrument  string  `json:"instrument"`
	Theme       string  `json:"theme"`
	DurationSec int     `json:"duration_sec"`
	SNR         float64 `json:"snr"`
}

// buildSpec maps a request onto the matching task spec. IP display names
// are resolved to backend voice ids here so validation errors surface
// before anything is launched.
func (h *TaskHandler) buildSpec(req *CreateTaskRequest) (task.Spec, error) {
	switch task.Type(req.TaskType) {
	case task.TypeASR:
		return task.ASRSpec{AudioB64: req.AudioB64}, nil
	case task.TypeEdit:
		return task.EditSpec{AudioB64: req.AudioB64, Instruction: req.Instruction}, nil
	case task.TypeTTS:
		return task.TTSSpec{Text: req.Text, PromptText: req.PromptText, PromptAudioB64: req.PromptAudioB64}, nil
	case task.TypeZeroShotTTS:
		return task.ZeroShotSpec{Text: req.Text, PromptAudioB64: req.PromptAudioB64}, nil
	case task.TypeInstructTTS:
		spec := task.InstructSpec{
			Instruct:       task.InstructType(req.InstructType),
			Text:           req.Text,
			PromptAudioB64: req.PromptAudioB64,
			Emotion:        req.Emotion,
			Dialect:        req.Dialect,
			Style:          req.Style,
			Speed:          req.Speed,
			Pitch:          req.Pitch,
			Volume:         req.Volume,
		}
		if req.IPName != "" {
			id, ok := h.voices.Voice(req.IPName)
			if !ok {
				return nil, fmt.Errorf("unknown IP voice %q", req.IPName)
			}
			spec.IPVoice = id
		}
		return spec, nil
	case task.TypePodcastChunk:
		return task.PodcastChunkSpec{Text: req.Text, PromptWavsB64: req.PromptWavsB64}, nil
	case task.TypeBGM:
		return task.BGMSpec{
			Genre:       req.Genre,
			Mood:        req.Mood,
			Instrument:  req.Instrument,
			Theme:       req.Theme,
			DurationSec: req.DurationSec,
		}, nil
	case task.TypeTTA:
		return task.TTASpec{Text: req.Text}, nil
	case task.TypeSpeechWithBGM:
		return task.SpeechWithBGMSpec{
			Text:           req.Text,
			PromptAudioB64: req.PromptAudioB64,
			Genre:          req.Genre,
			Mood:           req.Mood,
			Instrument:     req.Instrument,
			Theme:          req.Theme,
			SNR:            req.SNR,
		}, nil
	default:
		return nil, fmt.Errorf("unknown task_type %q", req.TaskType)
	}
}

// CreateTask handles POST /api/v1/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, 1001, "invalid request", err.Error())
		return
	}
	spec, err := h.buildSpec(&req)
	if err != nil {
		respondError(c, http.StatusBadRequest, 1001, "invalid request", err.Error())
		return
	}

	rec := h.registry.Create(req.TaskType)
	run := h.orch.NewRun(spec)
	go drive(context.Background(), run, rec)

	h.logger.Info("task run launched",
		zap.String("run_id", rec.ID),
		zap.String("task_type", req.TaskType))
	respondSuccess(c, gin.H{"run_id": rec.ID})
}

// GetTask handles GET /api/v1/tasks/:run_id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	rec, ok := h.registry.Get(c.Param("run_id"))
	if !ok {
		respondError(c, http.StatusNotFound, 1002, "run not found", "")
		return
	}
	respondSuccess(c, rec.Snapshot())
}

// GetTaskArtifact handles GET /api/v1/tasks/:run_id/artifact.
func (h *TaskHandler) GetTaskArtifact(c *gin.Context) {
	rec, ok := h.registry.Get(c.Param("run_id"))
	if !ok {
		respondError(c, http.StatusNotFound, 1002, "run not found", "")
		return
	}
	snap := rec.Snapshot()
	if !snap.Terminal || snap.State != string(task.StateSucceeded) {
		respondError(c, http.StatusConflict, 1003, "run not finished", snap.State)
		return
	}
	if snap.ArtifactPath == "" {
		respondError(c, http.StatusNotFound, 1005, "run produced no artifact", "")
		return
	}
	c.File(snap.ArtifactPath)
}

// drive pumps a run's state machine at the poll cadence and mirrors every
// event into the registry record.
func drive(ctx context.Context, run *task.Run, rec *Record) {
	for {
		ev := run.Advance(ctx)
		rec.update(func(r *Record) {
			r.state = string(ev.State)
			r.message = ev.Message
			r.elapsed = ev.Elapsed
			r.taskID = ev.TaskID
			r.terminal = ev.Terminal
			if ev.Err != nil {
				r.errMsg = ev.Err.Error()
			}
		})
		if ev.Terminal {
			if outcome, ok := run.Outcome(); ok {
				rec.update(func(r *Record) {
					r.text = outcome.Text
					r.artifactPath = outcome.ArtifactPath
				})
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(task.DefaultPollInterval):
		}
	}
}

func respondSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func respondError(c *gin.Context, statusCode, code int, message, details string) {
	c.JSON(statusCode, gin.H{
		"code":    code,
		"message": message,
		"data":    details,
	})
}
