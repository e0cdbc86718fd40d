package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirphl/lead-connect/models"
	"go.uber.org/zap"
)

// ErrUnreadableTable is returned when a save would overwrite a table file that cannot be parsed
var ErrUnreadableTable = errors.New("table file exists but cannot be parsed")

// FlatFileRepository keeps a whole table in one tabular file
type FlatFileRepository[T any] struct {
	path   string
	codec  RecordCodec[T]
	logger *zap.Logger
}

// NewFlatFileRepository creates a repository backed by path
func NewFlatFileRepository[T any](path string, codec RecordCodec[T], logger *zap.Logger) *FlatFileRepository[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlatFileRepository[T]{path: path, codec: codec, logger: logger}
}

// NewUserRepository stores users in path
func NewUserRepository(path string, logger *zap.Logger) UserRepository {
	return NewFlatFileRepository(path, UserCodec, logger)
}

// NewCampaignRepository stores campaigns in path
func NewCampaignRepository(path string, logger *zap.Logger) CampaignRepository {
	return NewFlatFileRepository(path, CampaignCodec, logger)
}

// LoadAll returns every row. A missing or unreadable file yields an empty table.
func (r *FlatFileRepository[T]) LoadAll(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheet, err := ReadSheet(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("Treating unreadable table as empty",
				zap.String("file", filepath.Base(r.path)),
				zap.Error(err),
			)
		}
		return []*T{}, nil
	}
	rows, err := r.codec.DecodeAll(sheet)
	if err != nil {
		r.logger.Warn("Treating unparsable table as empty",
			zap.String("file", filepath.Base(r.path)),
			zap.Error(err),
		)
		return []*T{}, nil
	}
	return rows, nil
}

// SaveAll overwrites the file with rows. An existing file that cannot be parsed is left untouched
// and ErrUnreadableTable is returned.
func (r *FlatFileRepository[T]) SaveAll(ctx context.Context, rows []*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.checkReadable(); err != nil {
		r.logger.Error("Refusing to overwrite unreadable table",
			zap.String("file", filepath.Base(r.path)),
			zap.Error(err),
		)
		return err
	}
	return WriteSheet(r.path, r.codec.EncodeAll(rows))
}

func (r *FlatFileRepository[T]) checkReadable() error {
	sheet, err := ReadSheet(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil {
		_, err = r.codec.DecodeAll(sheet)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableTable, filepath.Base(r.path), err)
	}
	return nil
}

var (
	_ UserRepository     = (*FlatFileRepository[models.User])(nil)
	_ CampaignRepository = (*FlatFileRepository[models.Campaign])(nil)
)
