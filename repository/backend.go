package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerniceZTT/bid_tracker/config"
	"github.com/BerniceZTT/bid_tracker/models"
)

// ErrNoData 存储中尚无数据（例如文件不存在）
var ErrNoData = errors.New("no stored projects")

// Backend 整体读写项目集合的存储后端
type Backend interface {
	Name() string
	Load(ctx context.Context) ([]models.ProjectRecord, error)
	Save(ctx context.Context, records []models.ProjectRecord) error
	Close() error
}

// OpenBackend 根据配置打开存储后端
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StorageFormat {
	case config.StorageCSV, config.StorageJSON:
		return NewFileBackend(cfg.DataFile, cfg.StorageFormat)
	case config.StorageSQLite:
		return NewSQLiteBackend(cfg.DataFile)
	case config.StorageMongo:
		return OpenMongoBackend(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unsupported storage format %q", cfg.StorageFormat)
	}
}
