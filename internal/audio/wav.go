// Package audio reads, writes and mixes PCM WAV files.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Clip holds decoded PCM audio together with its format parameters.
type Clip struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	// Data is raw little-endian PCM, exactly as stored in the data chunk.
	Data []byte
}

// FrameSize returns the byte width of one frame (all channels of one sample).
func (c *Clip) FrameSize() int {
	return c.Channels * c.BitsPerSample / 8
}

// Frames returns the number of complete frames in the clip.
func (c *Clip) Frames() int {
	fs := c.FrameSize()
	if fs == 0 {
		return 0
	}
	return len(c.Data) / fs
}

// ReadFile parses a RIFF/WAVE file containing linear PCM. Chunks other than
// fmt and data are skipped.
func ReadFile(path string) (*Clip, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	return Decode(raw)
}

// Decode parses in-memory RIFF/WAVE bytes.
func Decode(raw []byte) (*Clip, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("decode wav: not a RIFF/WAVE stream")
	}
	clip := &Clip{}
	sawFmt := false
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			size = len(raw) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("decode wav: fmt chunk too short (%d bytes)", size)
			}
			format := binary.LittleEndian.Uint16(raw[body : body+2])
			if format != 1 { // PCM only
				return nil, fmt.Errorf("decode wav: unsupported audio format %d", format)
			}
			clip.Channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			clip.BitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			sawFmt = true
		case "data":
			clip.Data = append(clip.Data[:0], raw[body:body+size]...)
		}
		// chunk bodies are word-aligned
		pos = body + size + size%2
	}
	if !sawFmt {
		return nil, fmt.Errorf("decode wav: missing fmt chunk")
	}
	if clip.BitsPerSample != 16 && clip.BitsPerSample != 32 {
		return nil, fmt.Errorf("decode wav: unsupported bit depth %d", clip.BitsPerSample)
	}
	if clip.Channels < 1 {
		return nil, fmt.Errorf("decode wav: invalid channel count %d", clip.Channels)
	}
	return clip, nil
}

// Encode serializes a clip back into RIFF/WAVE bytes.
func Encode(c *Clip) []byte {
	byteRate := c.SampleRate * c.Channels * c.BitsPerSample / 8
	blockAlign := c.Channels * c.BitsPerSample / 8
	out := make([]byte, 0, 44+len(c.Data))

	u32 := func(v uint32) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		return b[:]
	}
	u16 := func(v uint16) []byte {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		return b[:]
	}

	out = append(out, "RIFF"...)
	out = append(out, u32(uint32(36+len(c.Data)))...)
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = append(out, u32(16)...)
	out = append(out, u16(1)...)
	out = append(out, u16(uint16(c.Channels))...)
	out = append(out, u32(uint32(c.SampleRate))...)
	out = append(out, u32(uint32(byteRate))...)
	out = append(out, u16(uint16(blockAlign))...)
	out = append(out, u16(uint16(c.BitsPerSample))...)
	out = append(out, "data"...)
	out = append(out, u32(uint32(len(c.Data)))...)
	out = append(out, c.Data...)
	return out
}

// WriteFile writes a clip to disk as a WAV file.
func WriteFile(path string, c *Clip) error {
	if err := os.WriteFile(path, Encode(c), 0o644); err != nil {
		return fmt.Errorf("write wav %s: %w", path, err)
	}
	return nil
}
