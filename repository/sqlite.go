package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/BerniceZTT/bid_tracker/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS projects (
    position INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    client TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    drive_link TEXT NOT NULL DEFAULT '',
    created TEXT NOT NULL DEFAULT '',
    deadline TEXT NOT NULL DEFAULT '',
    value REAL NOT NULL DEFAULT 0,
    priority TEXT NOT NULL DEFAULT '',
    last_updated TEXT NOT NULL DEFAULT ''
);
`

// SQLiteBackend 将项目集合保存到单个 SQLite 文件
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend 打开数据库并建表
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite 只支持单个写入者
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Name 后端名称
func (b *SQLiteBackend) Name() string {
	return "sqlite:" + b.path
}

// Load 按保存顺序读取全部记录
func (b *SQLiteBackend) Load(ctx context.Context) ([]models.ProjectRecord, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, title, client, notes, status, drive_link, created, deadline, value, priority, last_updated
		FROM projects
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var records []models.ProjectRecord
	for rows.Next() {
		var (
			rec                        models.ProjectRecord
			status, priority           string
			created, deadline, updated string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Client,
			&rec.Notes,
			&status,
			&rec.DriveLink,
			&created,
			&deadline,
			&rec.Value,
			&priority,
			&updated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		rec.Status = models.Status(status)
		rec.Priority = models.Priority(priority)
		if rec.CreatedDate, err = parseTimestamp(created); err != nil {
			return nil, fmt.Errorf("project %s: created: %w", rec.ID, err)
		}
		if rec.LastUpdated, err = parseTimestamp(updated); err != nil {
			return nil, fmt.Errorf("project %s: last_updated: %w", rec.ID, err)
		}
		if deadline != "" {
			d, err := parseTimestamp(deadline)
			if err != nil {
				return nil, fmt.Errorf("project %s: deadline: %w", rec.ID, err)
			}
			rec.Deadline = &d
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return records, nil
}

// Save 在一个事务内清空并重新写入全部记录
func (b *SQLiteBackend) Save(ctx context.Context, records []models.ProjectRecord) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := saveProjects(ctx, tx, records); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit projects: %w", err)
	}
	return nil
}

func saveProjects(ctx context.Context, tx *sql.Tx, records []models.ProjectRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO projects (position, id, title, client, notes, status, drive_link, created, deadline, value, priority, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			i,
			rec.ID,
			rec.Title,
			rec.Client,
			rec.Notes,
			string(rec.Status),
			rec.DriveLink,
			formatTimestamp(rec.CreatedDate),
			formatDeadline(rec.Deadline),
			rec.Value,
			string(rec.Priority),
			formatTimestamp(rec.LastUpdated),
		); err != nil {
			return fmt.Errorf("failed to insert project %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Close 关闭数据库连接
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
