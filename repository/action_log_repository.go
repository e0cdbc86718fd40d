package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
)

// ActionLogRepositoryImpl appends audit rows to a CSV file
type ActionLogRepositoryImpl struct {
	path string
	mu   sync.Mutex
}

// NewActionLogRepository creates an appender writing to path
func NewActionLogRepository(path string) *ActionLogRepositoryImpl {
	return &ActionLogRepositoryImpl{path: path}
}

// Append writes one row. The header, prefixed by a UTF-8 BOM so spreadsheet tools detect the
// encoding, is written only when the file does not exist yet.
func (r *ActionLogRepositoryImpl) Append(ctx context.Context, entry *models.ActionLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create action log directory: %w", err)
	}

	fresh := !fileExists(r.path)
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open action log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if _, err := f.WriteString(utf8BOM); err != nil {
			return fmt.Errorf("failed to write action log header: %w", err)
		}
		if err := w.Write(models.ActionLogColumns); err != nil {
			return fmt.Errorf("failed to write action log header: %w", err)
		}
	}
	if err := w.Write([]string{
		entry.LogID,
		entry.UserID,
		entry.ActionType.String(),
		entry.TableName,
		entry.RecordID,
		string(entry.OldValues),
		string(entry.NewValues),
		entry.ActionTimestamp.UTC().Format(utils.TimestampLayout),
	}); err != nil {
		return fmt.Errorf("failed to write action log entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush action log: %w", err)
	}
	return nil
}

var _ ActionLogRepository = (*ActionLogRepositoryImpl)(nil)
