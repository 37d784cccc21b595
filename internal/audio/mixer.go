package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Mixer concatenates and mixes PCM clips.
type Mixer struct {
	logger *zap.Logger
}

func NewMixer(logger *zap.Logger) *Mixer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mixer{logger: logger}
}

// GainFromSNR converts a target speech-to-background SNR in dB into the
// linear gain applied to the background track.
func GainFromSNR(snrDB float64) float64 {
	return math.Pow(10, -snrDB/20)
}

// ConcatFiles joins the given WAV files in order and writes the result.
// Format parameters are taken from the first file; later files with
// different parameters are joined byte-wise anyway, with a warning, so a
// long pipeline is not aborted over a mismatched reference clip.
func (m *Mixer) ConcatFiles(paths []string, out string) error {
	if len(paths) == 0 {
		return fmt.Errorf("concat: no input files")
	}
	var joined *Clip
	for _, p := range paths {
		clip, err := ReadFile(p)
		if err != nil {
			return fmt.Errorf("concat: %w", err)
		}
		if joined == nil {
			joined = &Clip{
				SampleRate:    clip.SampleRate,
				Channels:      clip.Channels,
				BitsPerSample: clip.BitsPerSample,
			}
		} else if clip.SampleRate != joined.SampleRate ||
			clip.Channels != joined.Channels ||
			clip.BitsPerSample != joined.BitsPerSample {
			m.logger.Warn("concat input differs from first clip, joining anyway",
				zap.String("path", p),
				zap.Int("sample_rate", clip.SampleRate),
				zap.Int("channels", clip.Channels),
				zap.Int("bits", clip.BitsPerSample))
		}
		joined.Data = append(joined.Data, clip.Data...)
	}
	return WriteFile(out, joined)
}

// MixFiles overlays a background track onto a speech track at the given
// linear background gain and writes the result. The output always has the
// speech clip's format and exactly its frame count: the background is
// coerced to the speech channel layout, then truncated or tiled to length.
func (m *Mixer) MixFiles(speechPath, bgmPath, out string, bgmGain float64) error {
	speech, err := ReadFile(speechPath)
	if err != nil {
		return fmt.Errorf("mix: %w", err)
	}
	bgm, err := ReadFile(bgmPath)
	if err != nil {
		return fmt.Errorf("mix: %w", err)
	}
	mixed, err := m.Mix(speech, bgm, bgmGain)
	if err != nil {
		return err
	}
	return WriteFile(out, mixed)
}

// Mix returns speech with bgm overlaid at bgmGain.
func (m *Mixer) Mix(speech, bgm *Clip, bgmGain float64) (*Clip, error) {
	if speech.BitsPerSample != bgm.BitsPerSample {
		return nil, fmt.Errorf("mix: bit depth mismatch: speech %d vs bgm %d",
			speech.BitsPerSample, bgm.BitsPerSample)
	}
	if speech.SampleRate != bgm.SampleRate {
		m.logger.Warn("mix inputs have different sample rates, background will play resampled-free",
			zap.Int("speech_rate", speech.SampleRate),
			zap.Int("bgm_rate", bgm.SampleRate))
	}

	s := toFloats(speech)
	b := toFloats(bgm)
	b = coerceChannels(b, bgm.Channels, speech.Channels)
	b = fitLength(b, len(s))

	for i := range s {
		s[i] += b[i] * bgmGain
	}

	out := &Clip{
		SampleRate:    speech.SampleRate,
		Channels:      speech.Channels,
		BitsPerSample: speech.BitsPerSample,
	}
	out.Data = fromFloats(s, speech.BitsPerSample)
	return out, nil
}

func toFloats(c *Clip) []float64 {
	switch c.BitsPerSample {
	case 16:
		n := len(c.Data) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(int16(binary.LittleEndian.Uint16(c.Data[i*2:])))
		}
		return out
	case 32:
		n := len(c.Data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(int32(binary.LittleEndian.Uint32(c.Data[i*4:])))
		}
		return out
	}
	return nil
}

func fromFloats(samples []float64, bits int) []byte {
	switch bits {
	case 16:
		out := make([]byte, len(samples)*2)
		for i, v := range samples {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(clampInt(v, math.MinInt16, math.MaxInt16)))
		}
		return out
	case 32:
		out := make([]byte, len(samples)*4)
		for i, v := range samples {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(clampInt(v, math.MinInt32, math.MaxInt32)))
		}
		return out
	}
	return nil
}

func clampInt(v float64, lo, hi int64) int64 {
	r := int64(math.Round(v))
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// coerceChannels converts an interleaved sample slice between mono and
// stereo. Stereo to mono averages the pair; mono to stereo duplicates.
func coerceChannels(samples []float64, from, to int) []float64 {
	if from == to {
		return samples
	}
	switch {
	case from == 2 && to == 1:
		out := make([]float64, len(samples)/2)
		for i := range out {
			out[i] = (samples[i*2] + samples[i*2+1]) / 2
		}
		return out
	case from == 1 && to == 2:
		out := make([]float64, len(samples)*2)
		for i, v := range samples {
			out[i*2] = v
			out[i*2+1] = v
		}
		return out
	}
	// Unusual layouts: fall back to treating the stream as already matching.
	return samples
}

// fitLength truncates or tiles samples to exactly n entries.
func fitLength(samples []float64, n int) []float64 {
	if len(samples) == n {
		return samples
	}
	if len(samples) > n {
		return samples[:n]
	}
	if len(samples) == 0 {
		return make([]float64, n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = samples[i%len(samples)]
	}
	return out
}
