package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxScratchFiles bounds how many downloaded artifacts the scratch
// directory retains before the oldest are evicted.
const DefaultMaxScratchFiles = 10

// Store is the shared scratch directory for downloaded artifacts. Names are
// collision-resistant so concurrent runs never clash; retention is enforced
// opportunistically before each write.
type Store struct {
	dir      string
	maxFiles int
	logger   *zap.Logger
}

func NewStore(dir string, maxFiles int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxScratchFiles
	}
	return &Store{dir: dir, maxFiles: maxFiles, logger: logger}
}

func (s *Store) Dir() string { return s.dir }

// Save writes content into the scratch directory under a fresh
// "{prefix}-{uuid}{ext}" name and returns the full path.
func (s *Store) Save(prefix, ext string, content []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	s.cleanup()
	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	p := filepath.Join(s.dir, name)
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	s.logger.Debug("artifact saved", zap.String("path", p), zap.Int("bytes", len(content)))
	return p, nil
}

// cleanup evicts the oldest files beyond the retention cap. Errors are
// logged and ignored: retention is best-effort housekeeping.
func (s *Store) cleanup() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	type aged struct {
		path string
		mod  int64
	}
	var files []aged
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, aged{filepath.Join(s.dir, e.Name()), info.ModTime().UnixNano()})
	}
	if len(files) < s.maxFiles {
		return
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })
	evict := files[:len(files)-s.maxFiles+1]
	for _, f := range evict {
		if err := os.Remove(f.path); err != nil {
			s.logger.Warn("scratch eviction failed", zap.String("path", f.path), zap.Error(err))
		}
	}
	if len(evict) > 0 {
		s.logger.Debug("scratch directory pruned", zap.Int("evicted", len(evict)))
	}
}
