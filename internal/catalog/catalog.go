// Package catalog holds the voice and music descriptor data the demo
// features pick from: IP character voices, their signature lines, and the
// descriptor vocabularies for music generation.
package catalog

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"uniaudio/internal/task"
)

// Catalog is an immutable-after-construction value built once at startup
// and passed to whatever needs it.
type Catalog struct {
	names  []string
	voices map[string]string
	lines  map[string]string

	BGMGenres      []string
	BGMMoods       []string
	BGMInstruments []string
	BGMThemes      []string
	SWBGenres      []string
	SWBMoods       []string
	SWBInstruments []string
	SWBThemes      []string
	Dialects       []string
	Emotions       []string

	logger *zap.Logger
}

// Names lists the IP voices in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Voice resolves a display name to its backend voice id.
func (c *Catalog) Voice(name string) (string, bool) {
	v, ok := c.voices[name]
	return v, ok
}

// Line returns a character's signature line, used as the synthesis text
// when generating a reference clip for that voice.
func (c *Catalog) Line(name string) (string, bool) {
	l, ok := c.lines[name]
	return l, ok
}

// RandomBGM picks one descriptor of each kind for a background track of the
// given duration.
func (c *Catalog) RandomBGM(durationSec int) task.BGMSpec {
	pick := func(xs []string) string { return xs[rand.IntN(len(xs))] }
	return task.BGMSpec{
		Genre:       pick(c.BGMGenres),
		Mood:        pick(c.BGMMoods),
		Instrument:  pick(c.BGMInstruments),
		Theme:       pick(c.BGMThemes),
		DurationSec: durationSec,
	}
}

// LoadMerge appends extra IP voices from a text file. Lines are either
// "Name:BackendID" or a bare name (the name doubles as the id); blank lines
// and #-comments are skipped. File entries are sorted and appended after
// the built-ins; an existing name's id is overridden.
func (c *Catalog) LoadMerge(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open voice list %s: %w", path, err)
	}
	defer f.Close()

	extra := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, id, ok := strings.Cut(line, ":"); ok {
			extra[strings.TrimSpace(name)] = strings.TrimSpace(id)
		} else {
			extra[line] = line
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read voice list %s: %w", path, err)
	}

	added := make([]string, 0, len(extra))
	for name := range extra {
		added = append(added, name)
	}
	sort.Strings(added)
	for _, name := range added {
		if _, exists := c.voices[name]; !exists {
			c.names = append(c.names, name)
		}
		c.voices[name] = extra[name]
	}
	c.logger.Info("voice catalog merged",
		zap.String("path", path),
		zap.Int("added", len(added)),
		zap.Int("total", len(c.names)))
	return nil
}
