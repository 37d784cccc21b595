package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError is a local pre-submission failure. It never reaches the
// gateway.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Spec builds and validates one task type's submission payload. The wire
// shapes are the remote models' contract and are reproduced exactly.
type Spec interface {
	Type() Type
	Validate() error
	Args() (map[string]any, error)
}

const asrInstruction = "Please recognize the language of this speech and transcribe it. Format: oral, punctuated."

// ASRSpec transcribes a clip.
type ASRSpec struct {
	AudioB64 string
}

func (ASRSpec) Type() Type { return TypeASR }

func (s ASRSpec) Validate() error {
	if s.AudioB64 == "" {
		return &ValidationError{Field: "audio", Reason: "audio reference is required"}
	}
	return nil
}

func (s ASRSpec) Args() (map[string]any, error) {
	return map[string]any{
		"task_name": "asr",
		"audio_b64": s.AudioB64,
		"messages": []any{
			map[string]any{
				"role": "HUMAN",
				"content": []any{
					map[string]any{"type": "text", "text": asrInstruction},
					map[string]any{"type": "audio", "audio": "placeholder"},
				},
			},
		},
	}, nil
}

// EditSpec rewrites a clip's speech per a free-form instruction.
type EditSpec struct {
	AudioB64    string
	Instruction string
}

func (EditSpec) Type() Type { return TypeEdit }

func (s EditSpec) Validate() error {
	if s.AudioB64 == "" {
		return &ValidationError{Field: "audio", Reason: "audio reference is required"}
	}
	if s.Instruction == "" {
		return &ValidationError{Field: "instruction", Reason: "edit instruction is required"}
	}
	return nil
}

func (s EditSpec) Args() (map[string]any, error) {
	prompt := fmt.Sprintf(
		"<prompt>Please recognize the language of this speech and transcribe it. And %s\\n</prompt>",
		s.Instruction)
	return map[string]any{
		"task_name": "edit",
		"audio_b64": s.AudioB64,
		"messages": []any{
			map[string]any{
				"role": "HUMAN",
				"content": []any{
					map[string]any{"type": "audio", "audio": "placeholder", "target_sample_rate": 16000},
					map[string]any{"type": "text", "text": prompt},
				},
			},
		},
	}, nil
}

// TTSSpec is basic voice cloning against the older deployment: synthesize
// Text in the voice of the reference clip whose transcript is PromptText.
type TTSSpec struct {
	Text           string
	PromptText     string
	PromptAudioB64 string
}

func (TTSSpec) Type() Type { return TypeTTS }

func (s TTSSpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "synthesis text is required"}
	}
	if s.PromptText == "" {
		return &ValidationError{Field: "prompt_text", Reason: "reference transcript is required"}
	}
	if s.PromptAudioB64 == "" {
		return &ValidationError{Field: "prompt_audio", Reason: "reference audio is required"}
	}
	return nil
}

func (s TTSSpec) Args() (map[string]any, error) {
	return map[string]any{
		"task_name":        "tts",
		"prompt_audio_b64": s.PromptAudioB64,
		"text":             s.Text,
		"prompt_text":      s.PromptText,
	}, nil
}

// ZeroShotSpec clones the reference clip's voice without a transcript.
type ZeroShotSpec struct {
	Text           string
	PromptAudioB64 string
}

func (ZeroShotSpec) Type() Type { return TypeZeroShotTTS }

func (s ZeroShotSpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "synthesis text is required"}
	}
	if s.PromptAudioB64 == "" {
		return &ValidationError{Field: "prompt_audio", Reason: "reference audio is required"}
	}
	return nil
}

func (s ZeroShotSpec) Args() (map[string]any, error) {
	return map[string]any{
		"task_type":      "zero_shot_TTS",
		"text":           s.Text,
		"prompt_wav_b64": s.PromptAudioB64,
	}, nil
}

// InstructType selects which instruction flavor controls synthesis.
type InstructType string

const (
	InstructBasic   InstructType = "basic"
	InstructDialect InstructType = "dialect"
	InstructEmotion InstructType = "emotion"
	InstructIP      InstructType = "IP"
	InstructStyle   InstructType = "style"
)

// NeedsReference reports whether the flavor requires a reference clip. IP
// and style instructions define the voice themselves.
func (t InstructType) NeedsReference() bool {
	return t != InstructIP && t != InstructStyle
}

// InstructSpec is instruction-controlled synthesis. Exactly the fields of
// the selected flavor are serialized into the caption; the caption itself
// travels as a JSON string.
type InstructSpec struct {
	Instruct       InstructType
	Text           string
	PromptAudioB64 string

	Emotion string
	Dialect string
	IPVoice string // backend voice id, resolved through the catalog
	Style   string
	Speed   string
	Pitch   string
	Volume  string
}

func (InstructSpec) Type() Type { return TypeInstructTTS }

func (s InstructSpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "synthesis text is required"}
	}
	switch s.Instruct {
	case InstructBasic, InstructDialect, InstructEmotion, InstructIP, InstructStyle:
	default:
		return &ValidationError{Field: "instruct_type", Reason: fmt.Sprintf("unknown flavor %q", s.Instruct)}
	}
	if s.Instruct.NeedsReference() && s.PromptAudioB64 == "" {
		return &ValidationError{Field: "prompt_audio",
			Reason: fmt.Sprintf("flavor %q requires a reference clip", s.Instruct)}
	}
	switch s.Instruct {
	case InstructDialect:
		if s.Dialect == "" {
			return &ValidationError{Field: "dialect", Reason: "dialect name is required"}
		}
	case InstructEmotion:
		if s.Emotion == "" {
			return &ValidationError{Field: "emotion", Reason: "emotion name is required"}
		}
	case InstructIP:
		if s.IPVoice == "" {
			return &ValidationError{Field: "ip_voice", Reason: "voice id is required"}
		}
	case InstructStyle:
		if s.Style == "" {
			return &ValidationError{Field: "style", Reason: "style description is required"}
		}
	}
	return nil
}

func (s InstructSpec) caption() (string, error) {
	var details map[string]any
	switch s.Instruct {
	case InstructEmotion:
		details = map[string]any{"情感": s.Emotion}
	case InstructDialect:
		details = map[string]any{"方言": s.Dialect}
	case InstructIP:
		details = map[string]any{"IP": s.IPVoice}
	case InstructStyle:
		details = map[string]any{"风格": s.Style}
	case InstructBasic:
		details = map[string]any{"语速": s.Speed, "基频": s.Pitch, "音量": s.Volume}
	}
	raw, err := json.Marshal(map[string]any{"audio_sequence": []any{details}})
	if err != nil {
		return "", fmt.Errorf("marshal caption: %w", err)
	}
	return string(raw), nil
}

func (s InstructSpec) Args() (map[string]any, error) {
	caption, err := s.caption()
	if err != nil {
		return nil, err
	}
	args := map[string]any{
		"task_type":     "TTS",
		"instruct_type": string(s.Instruct),
		"text":          s.Text,
		"caption":       caption,
	}
	if s.PromptAudioB64 != "" {
		args["prompt_wav_b64"] = s.PromptAudioB64
	}
	return args, nil
}

// PodcastChunkSpec synthesizes one dialogue chunk with two speaker voices.
type PodcastChunkSpec struct {
	Text          string
	PromptWavsB64 []string
}

func (PodcastChunkSpec) Type() Type { return TypePodcastChunk }

func (s PodcastChunkSpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "dialogue text is required"}
	}
	if !strings.HasPrefix(strings.TrimSpace(s.Text), "speaker_1") {
		return &ValidationError{Field: "text", Reason: "dialogue must open with a speaker_1 turn"}
	}
	if len(s.PromptWavsB64) != 2 || s.PromptWavsB64[0] == "" || s.PromptWavsB64[1] == "" {
		return &ValidationError{Field: "prompt_wavs", Reason: "two speaker reference clips are required"}
	}
	return nil
}

func (s PodcastChunkSpec) Args() (map[string]any, error) {
	return map[string]any{
		"task_type":       "podcast",
		"text":            s.Text,
		"prompt_wavs_b64": s.PromptWavsB64,
	}, nil
}

// BGMSpec generates background music from a structured description.
type BGMSpec struct {
	Genre       string
	Mood        string
	Instrument  string
	Theme       string
	DurationSec int
}

func (BGMSpec) Type() Type { return TypeBGM }

func (s BGMSpec) Validate() error {
	if s.Genre == "" || s.Mood == "" || s.Instrument == "" || s.Theme == "" {
		return &ValidationError{Field: "bgm", Reason: "genre, mood, instrument and theme are all required"}
	}
	if s.DurationSec <= 0 {
		return &ValidationError{Field: "duration", Reason: "duration must be positive"}
	}
	return nil
}

func (s BGMSpec) Args() (map[string]any, error) {
	return map[string]any{
		"task_type": "bgm",
		"prompt_text": fmt.Sprintf("Genre: %s. Mood: %s. Instrument: %s. Theme: %s. Duration: %ds.",
			s.Genre, s.Mood, s.Instrument, s.Theme, s.DurationSec),
	}, nil
}

// TTASpec generates a sound effect from a free-form description.
type TTASpec struct {
	Text string
}

func (TTASpec) Type() Type { return TypeTTA }

func (s TTASpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "effect description is required"}
	}
	return nil
}

func (s TTASpec) Args() (map[string]any, error) {
	return map[string]any{"task_type": "TTA", "text": s.Text}, nil
}

// SpeechWithBGMSpec synthesizes speech with generated music underneath,
// mixed remotely at the given SNR.
type SpeechWithBGMSpec struct {
	Text           string
	PromptAudioB64 string
	Genre          string
	Mood           string
	Instrument     string
	Theme          string
	SNR            float64
}

func (SpeechWithBGMSpec) Type() Type { return TypeSpeechWithBGM }

func (s SpeechWithBGMSpec) Validate() error {
	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "synthesis text is required"}
	}
	if s.PromptAudioB64 == "" {
		return &ValidationError{Field: "prompt_audio", Reason: "reference audio is required"}
	}
	return nil
}

func (s SpeechWithBGMSpec) Args() (map[string]any, error) {
	caption, err := json.Marshal(map[string]any{
		"Genre":      s.Genre + ".",
		"Mood":       s.Mood + ".",
		"Instrument": s.Instrument + ".",
		"Theme":      s.Theme + ".",
		"SNR":        fmt.Sprintf("%v", s.SNR),
		"ENV":        nil,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal bgm caption: %w", err)
	}
	return map[string]any{
		"task_type":      "speech_with_bgm",
		"text":           s.Text,
		"prompt_wav_b64": s.PromptAudioB64,
		"caption":        string(caption),
	}, nil
}

// CompositeSpec asks the remote side to concatenate previously generated
// speech chunks, mix in an optional music task's output, and render the
// final podcast artifact.
type CompositeSpec struct {
	SpeechTaskIDs []string
	BGMTaskID     string
	MixSNR        *float64
	RawText       string
}

func (CompositeSpec) Type() Type { return TypeComposite }

func (s CompositeSpec) Validate() error {
	if len(s.SpeechTaskIDs) == 0 {
		return &ValidationError{Field: "speech_task_id_list", Reason: "at least one speech task is required"}
	}
	for i, id := range s.SpeechTaskIDs {
		if id == "" {
			return &ValidationError{Field: "speech_task_id_list", Reason: fmt.Sprintf("entry %d is empty", i)}
		}
	}
	return nil
}

func (s CompositeSpec) Args() (map[string]any, error) {
	args := map[string]any{
		"task_type":           "composite_audio_video",
		"speech_task_id_list": s.SpeechTaskIDs,
	}
	if s.BGMTaskID != "" {
		args["bgm_task_id"] = s.BGMTaskID
	}
	if s.MixSNR != nil {
		args["mix_snr"] = *s.MixSNR
	}
	if s.RawText != "" {
		args["raw_text"] = s.RawText
	}
	return args, nil
}
