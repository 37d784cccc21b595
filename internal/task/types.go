// Package task models one unit of remote speech-model work and drives it
// through the submit, poll, fetch-artifact lifecycle.
package task

import "time"

// Type identifies a remote task kind. The value doubles as the scratch-file
// prefix for downloaded artifacts.
type Type string

const (
	TypeASR           Type = "asr"
	TypeEdit          Type = "edit"
	TypeTTS           Type = "tts"
	TypeZeroShotTTS   Type = "zero_shot_tts"
	TypeInstructTTS   Type = "instruct_tts"
	TypePodcastChunk  Type = "podcast_chunk"
	TypeBGM           Type = "bgm"
	TypeTTA           Type = "tta"
	TypeSpeechWithBGM Type = "speech_with_bgm"
	TypeComposite     Type = "composite"
)

// Budget is the wall-clock polling budget for the type. Short recognition
// jobs get a minute, synthesis gets two, and the long-running generative
// jobs (podcast chunks, music, remote composition) get ten.
func (t Type) Budget() time.Duration {
	switch t {
	case TypeASR:
		return 60 * time.Second
	case TypePodcastChunk, TypeBGM, TypeComposite:
		return 600 * time.Second
	default:
		return 120 * time.Second
	}
}

// Projects maps task kinds onto the gateway-side model deployments.
type Projects struct {
	// Default serves the task_type-style payloads of the current model
	// generation.
	Default string
	// Instruct serves instruction-controlled synthesis.
	Instruct string
	// Legacy serves the older task_name-style payloads (asr, edit, tts).
	Legacy string
}

// DefaultProjects are the deployments the demo is wired against.
func DefaultProjects() Projects {
	return Projects{
		Default:  "260203-ming-uniaudio-v4-moe-lite",
		Instruct: "260113-ming-uniaudio-instruct",
		Legacy:   "251220-ming-uniaudio",
	}
}

// Route picks the deployment a task type is submitted to.
func (p Projects) Route(t Type) string {
	switch t {
	case TypeASR, TypeEdit, TypeTTS:
		return p.Legacy
	case TypeInstructTTS:
		return p.Instruct
	default:
		return p.Default
	}
}

// State is a position in the run lifecycle. Succeeded and Failed are
// terminal; no transition ever leaves them.
type State string

const (
	StateCreated    State = "created"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Event is one observable step of a run: either a progress tick or the
// terminal result.
type Event struct {
	State    State
	TaskID   string
	Elapsed  time.Duration
	Message  string
	Err      error
	Terminal bool
}

// Outcome is the product of a succeeded run.
type Outcome struct {
	TaskID string
	// Text is set for recognition and edit tasks ("lang\ttext" already
	// reduced to the text part).
	Text string
	// ArtifactPath is the local file a downloaded or inline artifact was
	// written to. Empty when artifact collection was disabled.
	ArtifactPath string
}
