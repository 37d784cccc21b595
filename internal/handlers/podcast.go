package handlers

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"uniaudio/internal/artifact"
	"uniaudio/internal/podcast"
)

// PodcastHandler launches composite podcast generations.
type PodcastHandler struct {
	pipeline *podcast.Pipeline
	scratch  *artifact.Store
	registry *Registry
	logger   *zap.Logger
}

func NewPodcastHandler(pipeline *podcast.Pipeline, scratch *artifact.Store, registry *Registry, logger *zap.Logger) *PodcastHandler {
	return &PodcastHandler{
		pipeline: pipeline,
		scratch:  scratch,
		registry: registry,
		logger:   logger,
	}
}

// SpeakerRequest selects one podcast voice: a base64 reference clip or an
// IP voice name.
type SpeakerRequest struct {
	AudioB64 string `json:"audio_b64"`
	IPName   string `json:"ip_name"`
}

// CreatePodcastRequest is the body of POST /api/v1/podcast.
type CreatePodcastRequest struct {
	Script   string            `json:"script" binding:"required"`
	Speakers [2]SpeakerRequest `json:"speakers"`
	WithBGM  bool              `json:"with_bgm"`
	BGMSNR   float64           `json:"bgm_snr"`
	MaxChars int               `json:"max_chars"`
}

// CreatePodcast handles POST /api/v1/podcast. The pipeline runs in the
// background; progress and the final location are exposed through the
// shared run registry.
func (h *PodcastHandler) CreatePodcast(c *gin.Context) {
	var req CreatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, 1001, "invalid request", err.Error())
		return
	}

	preq := podcast.Request{
		Script:   req.Script,
		WithBGM:  req.WithBGM,
		BGMSNR:   req.BGMSNR,
		MaxChars: req.MaxChars,
	}
	for i, sp := range req.Speakers {
		if sp.AudioB64 != "" {
			raw, err := base64.StdEncoding.DecodeString(sp.AudioB64)
			if err != nil {
				respondError(c, http.StatusBadRequest, 1001, "invalid request", "speaker audio is not valid base64")
				return
			}
			path, err := h.scratch.Save("speaker-ref", ".wav", raw)
			if err != nil {
				respondError(c, http.StatusInternalServerError, 1004, "internal error", err.Error())
				return
			}
			preq.Speakers[i].AudioPath = path
		} else {
			preq.Speakers[i].IPName = sp.IPName
		}
	}

	rec := h.registry.Create("podcast")
	go h.run(rec, preq)

	h.logger.Info("podcast run launched", zap.String("run_id", rec.ID))
	respondSuccess(c, gin.H{"run_id": rec.ID})
}

func (h *PodcastHandler) run(rec *Record, req podcast.Request) {
	rec.update(func(r *Record) {
		r.state = "running"
		r.message = "generating podcast"
	})
	result, err := h.pipeline.Generate(context.Background(), req)
	if err != nil {
		rec.update(func(r *Record) {
			r.state = "failed"
			r.message = err.Error()
			r.errMsg = err.Error()
			r.terminal = true
		})
		return
	}
	rec.update(func(r *Record) {
		r.state = "succeeded"
		r.message = "done"
		r.location = result.Location
		r.terminal = true
	})
}
