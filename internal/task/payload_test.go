package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASRSpec(t *testing.T) {
	require.Error(t, ASRSpec{}.Validate())

	spec := ASRSpec{AudioB64: "QUJD"}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "asr", args["task_name"])
	assert.Equal(t, "QUJD", args["audio_b64"])

	msgs := args["messages"].([]any)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "HUMAN", msg["role"])
	content := msg["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	assert.Equal(t, "placeholder", content[1].(map[string]any)["audio"])
}

func TestEditSpec(t *testing.T) {
	require.Error(t, EditSpec{AudioB64: "x"}.Validate())
	require.Error(t, EditSpec{Instruction: "slower"}.Validate())

	spec := EditSpec{AudioB64: "QUJD", Instruction: "make it sound happy"}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "edit", args["task_name"])

	msg := args["messages"].([]any)[0].(map[string]any)
	content := msg["content"].([]any)
	audio := content[0].(map[string]any)
	assert.Equal(t, 16000, audio["target_sample_rate"])
	text := content[1].(map[string]any)["text"].(string)
	assert.Contains(t, text, "<prompt>")
	assert.Contains(t, text, "make it sound happy")
	assert.Contains(t, text, "</prompt>")
}

func TestInstructSpec(t *testing.T) {
	t.Run("reference requirement by flavor", func(t *testing.T) {
		needsRef := InstructSpec{Instruct: InstructEmotion, Text: "hi", Emotion: "高兴"}
		require.Error(t, needsRef.Validate())
		needsRef.PromptAudioB64 = "QUJD"
		require.NoError(t, needsRef.Validate())

		// IP and style voices carry their own identity.
		ip := InstructSpec{Instruct: InstructIP, Text: "hi", IPVoice: "康熙王朝_康熙"}
		require.NoError(t, ip.Validate())
		style := InstructSpec{Instruct: InstructStyle, Text: "hi", Style: "低沉庄重"}
		require.NoError(t, style.Validate())
	})

	t.Run("caption per flavor", func(t *testing.T) {
		cases := []struct {
			spec InstructSpec
			key  string
			want string
		}{
			{InstructSpec{Instruct: InstructEmotion, Text: "x", PromptAudioB64: "a", Emotion: "高兴"}, "情感", "高兴"},
			{InstructSpec{Instruct: InstructDialect, Text: "x", PromptAudioB64: "a", Dialect: "四川话"}, "方言", "四川话"},
			{InstructSpec{Instruct: InstructIP, Text: "x", IPVoice: "西游记_唐僧"}, "IP", "西游记_唐僧"},
			{InstructSpec{Instruct: InstructStyle, Text: "x", Style: "轻柔"}, "风格", "轻柔"},
		}
		for _, tc := range cases {
			args, err := tc.spec.Args()
			require.NoError(t, err)
			assert.Equal(t, "TTS", args["task_type"])
			assert.Equal(t, string(tc.spec.Instruct), args["instruct_type"])

			var caption map[string][]map[string]any
			require.NoError(t, json.Unmarshal([]byte(args["caption"].(string)), &caption))
			seq := caption["audio_sequence"]
			require.Len(t, seq, 1)
			assert.Equal(t, tc.want, seq[0][tc.key])
		}
	})

	t.Run("basic flavor carries prosody knobs", func(t *testing.T) {
		spec := InstructSpec{
			Instruct: InstructBasic, Text: "x", PromptAudioB64: "a",
			Speed: "快速", Pitch: "高", Volume: "低",
		}
		args, err := spec.Args()
		require.NoError(t, err)
		var caption map[string][]map[string]any
		require.NoError(t, json.Unmarshal([]byte(args["caption"].(string)), &caption))
		entry := caption["audio_sequence"][0]
		assert.Equal(t, "快速", entry["语速"])
		assert.Equal(t, "高", entry["基频"])
		assert.Equal(t, "低", entry["音量"])
	})

	t.Run("reference omitted from args when absent", func(t *testing.T) {
		args, err := InstructSpec{Instruct: InstructIP, Text: "x", IPVoice: "v"}.Args()
		require.NoError(t, err)
		_, present := args["prompt_wav_b64"]
		assert.False(t, present)
	})
}

func TestPodcastChunkSpec(t *testing.T) {
	require.Error(t, PodcastChunkSpec{Text: " speaker_1:x", PromptWavsB64: []string{"a"}}.Validate())
	require.Error(t, PodcastChunkSpec{Text: " speaker_1:x", PromptWavsB64: []string{"a", ""}}.Validate())
	require.Error(t, PodcastChunkSpec{Text: " speaker_2:x", PromptWavsB64: []string{"a", "b"}}.Validate())

	spec := PodcastChunkSpec{Text: " speaker_1:hi", PromptWavsB64: []string{"a", "b"}}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "podcast", args["task_type"])
	assert.Equal(t, []string{"a", "b"}, args["prompt_wavs_b64"])
}

func TestBGMSpec(t *testing.T) {
	spec := BGMSpec{Genre: "迪斯科", Mood: "快乐", Instrument: "电吉他", Theme: "庆典与喜悦", DurationSec: 35}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "bgm", args["task_type"])
	assert.Equal(t,
		"Genre: 迪斯科. Mood: 快乐. Instrument: 电吉他. Theme: 庆典与喜悦. Duration: 35s.",
		args["prompt_text"])

	spec.DurationSec = 0
	require.Error(t, spec.Validate())
}

func TestSpeechWithBGMSpec(t *testing.T) {
	spec := SpeechWithBGMSpec{
		Text: "hello", PromptAudioB64: "QUJD",
		Genre: "流行摇滚", Mood: "快乐", Instrument: "架子鼓", Theme: "旅行", SNR: 10,
	}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "speech_with_bgm", args["task_type"])

	var caption map[string]any
	require.NoError(t, json.Unmarshal([]byte(args["caption"].(string)), &caption))
	assert.Equal(t, "流行摇滚.", caption["Genre"])
	assert.Equal(t, "10", caption["SNR"])
	assert.Nil(t, caption["ENV"])
}

func TestCompositeSpec(t *testing.T) {
	require.Error(t, CompositeSpec{}.Validate())
	require.Error(t, CompositeSpec{SpeechTaskIDs: []string{"a", ""}}.Validate())

	snr := 12.5
	spec := CompositeSpec{
		SpeechTaskIDs: []string{"s1", "s2"},
		BGMTaskID:     "b1",
		MixSNR:        &snr,
		RawText:       " speaker_1:hi\n",
	}
	require.NoError(t, spec.Validate())
	args, err := spec.Args()
	require.NoError(t, err)
	assert.Equal(t, "composite_audio_video", args["task_type"])
	assert.Equal(t, []string{"s1", "s2"}, args["speech_task_id_list"])
	assert.Equal(t, "b1", args["bgm_task_id"])
	assert.Equal(t, 12.5, args["mix_snr"])

	// Optional fields stay off the wire when unset.
	bare, err := CompositeSpec{SpeechTaskIDs: []string{"s1"}}.Args()
	require.NoError(t, err)
	_, hasBGM := bare["bgm_task_id"]
	_, hasSNR := bare["mix_snr"]
	_, hasText := bare["raw_text"]
	assert.False(t, hasBGM)
	assert.False(t, hasSNR)
	assert.False(t, hasText)
}

func TestProjectsRoute(t *testing.T) {
	p := DefaultProjects()
	assert.Equal(t, p.Legacy, p.Route(TypeASR))
	assert.Equal(t, p.Legacy, p.Route(TypeTTS))
	assert.Equal(t, p.Instruct, p.Route(TypeInstructTTS))
	assert.Equal(t, p.Default, p.Route(TypePodcastChunk))
	assert.Equal(t, p.Default, p.Route(TypeComposite))
}

func TestTypeBudget(t *testing.T) {
	assert.Less(t, TypeASR.Budget(), TypeTTS.Budget())
	assert.Less(t, TypeTTS.Budget(), TypePodcastChunk.Budget())
	assert.Equal(t, TypePodcastChunk.Budget(), TypeComposite.Budget())
}
