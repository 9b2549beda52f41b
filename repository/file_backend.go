package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"
)

// lockRetryDelay 获取文件锁的重试间隔
const lockRetryDelay = 50 * time.Millisecond

// FileBackend 以 CSV 或 JSON 文件保存项目集合
type FileBackend struct {
	path   string
	format string
	codec  codec
	lock   *flock.Flock

	mu      sync.Mutex
	corrupt bool // 上次读取的文件无法解析，下次保存前先移走
}

// NewFileBackend 创建文件存储后端
func NewFileBackend(path, format string) (*FileBackend, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}

	// 确保目录存在
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return &FileBackend{
		path:   path,
		format: format,
		codec:  c,
		lock:   flock.New(path + ".lock"),
	}, nil
}

// Name 后端名称
func (b *FileBackend) Name() string {
	return b.format + ":" + b.path
}

// Path 数据文件路径
func (b *FileBackend) Path() string {
	return b.path
}

// Load 读取并解析数据文件
func (b *FileBackend) Load(ctx context.Context) ([]models.ProjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}

	records, err := b.codec.Decode(data)
	if err != nil {
		b.mu.Lock()
		b.corrupt = true
		b.mu.Unlock()
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}

	b.mu.Lock()
	b.corrupt = false
	b.mu.Unlock()
	return records, nil
}

// Save 写入临时文件后重命名覆盖，避免写入中途失败破坏原文件
func (b *FileBackend) Save(ctx context.Context, records []models.ProjectRecord) error {
	data, err := b.codec.Encode(records)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}

	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("data file %s is locked by another writer", b.path)
	}
	defer b.lock.Unlock()

	if err := b.quarantine(); err != nil {
		return err
	}
	return writeFileAtomic(b.path, data)
}

// quarantine 将无法解析的数据文件改名保留，避免被新数据覆盖
func (b *FileBackend) quarantine() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.corrupt {
		return nil
	}

	target := fmt.Sprintf("%s.corrupt-%s", b.path, time.Now().UTC().Format("20060102T150405.000000000Z"))
	if err := os.Rename(b.path, target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("move unreadable %s aside: %w", b.path, err)
	}
	b.corrupt = false

	utils.Logger.Warn().
		Str("path", b.path).
		Str("movedTo", target).
		Msg("数据文件无法解析，已改名保留后再写入新数据")
	return nil
}

// Close 释放文件锁
func (b *FileBackend) Close() error {
	return b.lock.Close()
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
