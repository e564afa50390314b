package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amosWeiskopf/crawlgate/internal/models"
)

// FileSink writes each snapshot to its own text file under a directory
type FileSink struct {
	mu  sync.Mutex
	dir string
}

// NewFileSink creates the directory if needed and returns a sink writing into it
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Path returns the file a snapshot kind is written to
func (s *FileSink) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".txt")
}

func (s *FileSink) WritePageCount(n int) error {
	return s.write(KindPageCount, FormatPageCount(n))
}

func (s *FileSink) WriteTopWords(words []models.WordCount) error {
	return s.write(KindTopWords, FormatTopWords(words))
}

func (s *FileSink) WriteLongestPage(page models.LongestPage) error {
	return s.write(KindLongest, FormatLongestPage(page))
}

func (s *FileSink) WriteSubdomains(rows []models.SubdomainCount) error {
	return s.write(KindSubdomains, FormatSubdomains(rows))
}

// Close is a no-op; every write is complete when it returns
func (s *FileSink) Close() error { return nil }

// write replaces the file through a rename so readers never see a partial snapshot
func (s *FileSink) write(kind Kind, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", kind, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s snapshot: %w", kind, err)
	}
	return nil
}
