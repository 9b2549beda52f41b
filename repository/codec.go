package repository

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BerniceZTT/bid_tracker/config"
	"github.com/BerniceZTT/bid_tracker/models"
)

// CSVHeader 前七列与旧版文件一致，其余列为新增字段
var CSVHeader = []string{
	"id", "title", "status", "drive_link", "created", "last_updated", "notes",
	"client", "deadline", "value", "priority",
}

const dateLayout = "2006-01-02"

type codec interface {
	Encode(records []models.ProjectRecord) ([]byte, error)
	Decode(data []byte) ([]models.ProjectRecord, error)
}

func codecFor(format string) (codec, error) {
	switch format {
	case config.StorageCSV:
		return csvCodec{}, nil
	case config.StorageJSON:
		return jsonCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
}

type jsonCodec struct{}

func (jsonCodec) Encode(records []models.ProjectRecord) ([]byte, error) {
	if records == nil {
		records = []models.ProjectRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (jsonCodec) Decode(data []byte) ([]models.ProjectRecord, error) {
	var records []models.ProjectRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

type csvCodec struct{}

func (csvCodec) Encode(records []models.ProjectRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.Title,
			string(rec.Status),
			rec.DriveLink,
			formatTimestamp(rec.CreatedDate),
			formatTimestamp(rec.LastUpdated),
			rec.Notes,
			rec.Client,
			formatDeadline(rec.Deadline),
			strconv.FormatFloat(rec.Value, 'f', -1, 64),
			string(rec.Priority),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode 按表头读取，兼容只有旧版七列的文件
func (csvCodec) Decode(data []byte) ([]models.ProjectRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := columns["id"]; !ok {
		return nil, fmt.Errorf("missing id column")
	}

	records := make([]models.ProjectRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		get := func(name string) string {
			if i, ok := columns[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}

		rec := models.ProjectRecord{
			ID:        get("id"),
			Title:     get("title"),
			Status:    models.Status(get("status")),
			DriveLink: get("drive_link"),
			Notes:     get("notes"),
			Client:    get("client"),
			Priority:  models.Priority(get("priority")),
		}
		if rec.CreatedDate, err = parseTimestamp(get("created")); err != nil {
			return nil, fmt.Errorf("line %d: created: %w", line+2, err)
		}
		if rec.LastUpdated, err = parseTimestamp(get("last_updated")); err != nil {
			return nil, fmt.Errorf("line %d: last_updated: %w", line+2, err)
		}
		if v := strings.TrimSpace(get("deadline")); v != "" {
			d, err := parseTimestamp(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: deadline: %w", line+2, err)
			}
			rec.Deadline = &d
		}
		if v := strings.TrimSpace(get("value")); v != "" {
			if rec.Value, err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("line %d: value: %w", line+2, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDeadline(d *time.Time) string {
	if d == nil {
		return ""
	}
	t := d.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// parseTimestamp 支持 RFC3339、无时区的 ISO 时间以及纯日期，均按 UTC 处理
func parseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05", dateLayout} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
}
