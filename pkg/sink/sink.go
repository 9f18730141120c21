// Package sink persists formatted report lines.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes one report file under a run's output prefix. A write
// failure is fatal to the run; nothing is retried and no partial report is
// kept.
type FileSink struct {
	path string
}

// NewFileSink returns a sink writing to prefix/<name>.
func NewFileSink(prefix, name string) *FileSink {
	return &FileSink{path: filepath.Join(prefix, name)}
}

// Path returns the report file path.
func (s *FileSink) Path() string { return s.path }

// Write persists the lines, creating parent directories as needed.
func (s *FileSink) Write(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("error saving report: %w", err)
	}
	return nil
}
