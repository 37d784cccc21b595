// Package podcast generates a multi-speaker podcast from a dialogue script
// by fanning the script out into remote synthesis tasks and asking the
// remote side to compose the final artifact.
package podcast

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uniaudio/internal/catalog"
	"uniaudio/internal/script"
	"uniaudio/internal/storage"
	"uniaudio/internal/task"
)

// Podcast synthesis takes exactly two voices.
const speakerCount = 2

// SpeakerRef names one of the two podcast voices: either a local reference
// clip or an IP voice from the catalog, whose reference is synthesized on
// demand.
type SpeakerRef struct {
	AudioPath string
	IPName    string
}

// Request describes one podcast generation.
type Request struct {
	Script   string
	Speakers [speakerCount]SpeakerRef
	WithBGM  bool
	// BGMSNR controls how loud the music mixes under the speech; lower is
	// louder.
	BGMSNR   float64
	MaxChars int
}

// Result is the finished podcast.
type Result struct {
	// Location is where the published artifact lives: a local path or a
	// presigned URL, depending on the configured store.
	Location string
	// ChunkTaskIDs are the remote speech tasks the episode was composed
	// from, in dialogue order.
	ChunkTaskIDs []string
}

// Pipeline wires the collaborators of the delegated composition flow.
type Pipeline struct {
	orch    *task.Orchestrator
	scripts *script.Processor
	voices  *catalog.Catalog
	store   storage.Store
	logger  *zap.Logger
}

func NewPipeline(orch *task.Orchestrator, scripts *script.Processor, voices *catalog.Catalog, store storage.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		orch:    orch,
		scripts: scripts,
		voices:  voices,
		store:   store,
		logger:  logger,
	}
}

// Generate runs the whole flow: resolve speaker references, chunk the
// script, synthesize every chunk sequentially, optionally generate music,
// then let the remote side compose everything into the final artifact.
// Chunks are deliberately not parallelized: ordering stays trivial and the
// remote never sees a burst. The first failing stage aborts the pipeline
// with its own error.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	normalized := p.scripts.Normalize(req.Script)
	chunks, err := p.scripts.Split(normalized, req.MaxChars)
	if err != nil {
		return nil, fmt.Errorf("prepare script: %w", err)
	}
	p.logger.Info("podcast script prepared", zap.Int("chunks", len(chunks)))

	var refs []string
	for i, sp := range req.Speakers {
		b64, err := p.resolveSpeaker(ctx, i+1, sp)
		if err != nil {
			return nil, fmt.Errorf("speaker %d: %w", i+1, err)
		}
		refs = append(refs, b64)
	}

	var chunkIDs []string
	for i, chunk := range chunks {
		run := p.orch.NewRun(task.PodcastChunkSpec{
			Text:          chunk,
			PromptWavsB64: refs,
		}, task.WithoutArtifact())
		outcome, err := run.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		chunkIDs = append(chunkIDs, outcome.TaskID)
		p.logger.Info("podcast chunk synthesized",
			zap.Int("chunk", i+1),
			zap.Int("total", len(chunks)),
			zap.String("task_id", outcome.TaskID))
	}

	var bgmID string
	var mixSNR *float64
	if req.WithBGM {
		spec := p.voices.RandomBGM(estimateDurationSec(normalized))
		run := p.orch.NewRun(spec, task.WithoutArtifact())
		outcome, err := run.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("generate bgm: %w", err)
		}
		bgmID = outcome.TaskID
		snr := req.BGMSNR
		mixSNR = &snr
		p.logger.Info("bgm generated", zap.String("task_id", bgmID))
	}

	run := p.orch.NewRun(task.CompositeSpec{
		SpeechTaskIDs: chunkIDs,
		BGMTaskID:     bgmID,
		MixSNR:        mixSNR,
		RawText:       normalized,
	})
	outcome, err := run.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("compose podcast: %w", err)
	}

	location, err := p.publish(ctx, outcome.ArtifactPath)
	if err != nil {
		return nil, err
	}
	return &Result{Location: location, ChunkTaskIDs: chunkIDs}, nil
}

// resolveSpeaker turns a speaker reference into base64 reference audio. IP
// voices get a reference clip synthesized from the character's signature
// line.
func (p *Pipeline) resolveSpeaker(ctx context.Context, num int, sp SpeakerRef) (string, error) {
	path := sp.AudioPath
	if path == "" {
		if sp.IPName == "" {
			return "", fmt.Errorf("either a reference clip or an IP voice is required")
		}
		voiceID, ok := p.voices.Voice(sp.IPName)
		if !ok {
			return "", fmt.Errorf("unknown IP voice %q", sp.IPName)
		}
		line, ok := p.voices.Line(sp.IPName)
		if !ok {
			return "", fmt.Errorf("no signature line for IP voice %q", sp.IPName)
		}
		p.logger.Info("synthesizing IP reference clip",
			zap.Int("speaker", num),
			zap.String("ip", sp.IPName))
		run := p.orch.NewRun(task.InstructSpec{
			Instruct: task.InstructIP,
			Text:     line,
			IPVoice:  voiceID,
		})
		outcome, err := run.Wait(ctx)
		if err != nil {
			return "", fmt.Errorf("synthesize IP reference: %w", err)
		}
		path = outcome.ArtifactPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference clip: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// publish copies the composed artifact into the persistent store.
func (p *Pipeline) publish(ctx context.Context, artifactPath string) (string, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("open composed artifact: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat composed artifact: %w", err)
	}

	ext := filepath.Ext(artifactPath)
	contentType := "audio/wav"
	if ext == ".mp4" {
		contentType = "video/mp4"
	}
	key := fmt.Sprintf("podcast_%s%s", uuid.NewString(), ext)
	location, err := p.store.Put(ctx, key, f, info.Size(), contentType)
	if err != nil {
		return "", fmt.Errorf("publish podcast: %w", err)
	}
	p.logger.Info("podcast published", zap.String("location", location))
	return location, nil
}

// estimateDurationSec guesses the episode length from the script so the
// generated music roughly covers it. Conversational Mandarin runs around
// four characters a second; the extra two seconds of tail matches what the
// music model is asked for elsewhere.
func estimateDurationSec(normalized string) int {
	sec := len([]rune(normalized))/4 + 2
	if sec < 30 {
		sec = 30
	}
	if sec > 60 {
		sec = 60
	}
	return sec
}
