package ipfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// Sink persists a ranked list, fastest first, so the next run can skip the scan.
type Sink struct {
	Path      string
	BackupDir string // empty disables backups
	now       func() time.Time
}

func NewSink(cfg types.AppConfig, ipv6 bool) *Sink {
	return &Sink{Path: cfg.CandidateFile(ipv6), BackupDir: cfg.BackupDir}
}

// WriteRanked replaces the list file with the ranked addresses and, when a backup
// directory is set, stores a timestamped copy there.
func (s *Sink) WriteRanked(ranked []types.RankedIP) error {
	var b strings.Builder
	for _, r := range ranked {
		b.WriteString(r.Address)
		b.WriteByte('\n')
	}
	data := []byte(b.String())

	if err := writeFileAtomic(s.Path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	tool.DefaultLogger.Infof("Saved %d ranked addresses to %s", len(ranked), s.Path)

	if s.BackupDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.BackupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	base := filepath.Base(s.Path)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), now().Format("20060102-150405"), ext)
	backup := filepath.Join(s.BackupDir, name)
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", backup, err)
	}
	tool.DefaultLogger.Debugf("Backup written to %s", backup)
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
