// Package script normalizes podcast scripts into the speaker-turn format
// the speech backend expects and splits them into chunk-sized requests.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxChars is the per-chunk character budget used when the caller
// does not override it.
const DefaultMaxChars = 280

var speakerLine = regexp.MustCompile(`(?i)^speaker[_\s]*(\d+)\s*:\s*(.*)$`)

// FormatError reports a script that cannot be split because it violates the
// podcast turn structure.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("script format: %s", e.Reason)
}

// Processor rewrites raw scripts into canonical speaker turns.
type Processor struct {
	logger *zap.Logger
}

func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// Normalize canonicalizes a raw script line by line: blank lines are
// dropped, full-width colons become half-width, and speaker markers are
// rewritten to the " speaker_N:content" form. Lines that do not look like
// speaker turns are kept verbatim (with the same leading space) so that no
// user text is silently lost. Normalize is idempotent.
func (p *Processor) Normalize(raw string) string {
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.ReplaceAll(line, "：", ":")
		if m := speakerLine.FindStringSubmatch(line); m != nil {
			b.WriteString(" speaker_")
			b.WriteString(m[1])
			b.WriteString(":")
			b.WriteString(m[2])
		} else {
			p.logger.Warn("script line does not match speaker format, keeping as-is",
				zap.String("line", line))
			b.WriteString(" ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Split cuts a normalized script into chunks of at most maxChars characters
// without ever splitting a speaker turn. A turn starts at a speaker_1 line
// and absorbs every following line up to the next speaker_1 line. The first
// line must start a turn; otherwise the script has no usable structure.
// A single turn longer than maxChars becomes its own oversized chunk.
func (p *Processor) Split(normalized string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	lines := strings.Split(strings.TrimRight(normalized, "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &FormatError{Reason: "script is empty"}
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[0]), "speaker_1") {
		return nil, &FormatError{Reason: "first line must start with speaker_1"}
	}

	var turns []string
	var cur []string
	flushTurn := func() {
		if len(cur) > 0 {
			turns = append(turns, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "speaker_1") {
			flushTurn()
		}
		cur = append(cur, line)
	}
	flushTurn()

	var chunks []string
	var chunk strings.Builder
	for _, turn := range turns {
		need := len([]rune(turn))
		if chunk.Len() > 0 {
			// +1 for the newline joining turns inside one chunk.
			if len([]rune(chunk.String()))+1+need > maxChars {
				chunks = append(chunks, chunk.String())
				chunk.Reset()
			} else {
				chunk.WriteString("\n")
			}
		}
		chunk.WriteString(turn)
	}
	if chunk.Len() > 0 {
		chunks = append(chunks, chunk.String())
	}
	p.logger.Debug("script split",
		zap.Int("turns", len(turns)),
		zap.Int("chunks", len(chunks)),
		zap.Int("max_chars", maxChars))
	return chunks, nil
}
