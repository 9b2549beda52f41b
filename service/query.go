package service

import (
	"sort"
	"strings"
	"time"

	"github.com/BerniceZTT/bid_tracker/models"
)

// StatusAll 不按状态筛选
const StatusAll models.Status = "All"

// FilterByStatus 按状态精确筛选，"All" 或空值返回全部
func FilterByStatus(records []models.ProjectRecord, status models.Status) []models.ProjectRecord {
	if status == StatusAll || status == "" {
		return records
	}
	out := make([]models.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByStatuses 多选筛选，空集合返回全部
func FilterByStatuses(records []models.ProjectRecord, statuses []models.Status) []models.ProjectRecord {
	if len(statuses) == 0 {
		return records
	}
	wanted := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		if st == StatusAll {
			return records
		}
		wanted[st] = true
	}
	out := make([]models.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if wanted[rec.Status] {
			out = append(out, rec)
		}
	}
	return out
}

// Search 标题或ID包含关键字（不区分大小写）
func Search(records []models.ProjectRecord, term string) []models.ProjectRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]models.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Title), term) ||
			strings.Contains(strings.ToLower(rec.ID), term) {
			out = append(out, rec)
		}
	}
	return out
}

// CountByStatus 各状态项目数量，只包含数据中出现的状态
func CountByStatus(records []models.ProjectRecord) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, rec := range records {
		counts[rec.Status]++
	}
	return counts
}

// ValueByStatus 各状态项目金额合计
func ValueByStatus(records []models.ProjectRecord) map[models.Status]float64 {
	sums := make(map[models.Status]float64)
	for _, rec := range records {
		sums[rec.Status] += rec.Value
	}
	return sums
}

// TotalValue 项目总金额
func TotalValue(records []models.ProjectRecord) float64 {
	var total float64
	for _, rec := range records {
		total += rec.Value
	}
	return total
}

// MostRecent 按创建时间倒序取前 n 个，创建时间相同保持原顺序
func MostRecent(records []models.ProjectRecord, n int) []models.ProjectRecord {
	if n <= 0 {
		return []models.ProjectRecord{}
	}
	sorted := append([]models.ProjectRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedDate.After(sorted[j].CreatedDate)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// DaysRemaining 截止日期距今天的天数，可为负数；没有截止日期时返回 false
func DaysRemaining(rec models.ProjectRecord, today time.Time) (int, bool) {
	if rec.Deadline == nil {
		return 0, false
	}
	deadline := truncateDay(*rec.Deadline)
	return int(deadline.Sub(truncateDay(today)).Hours() / 24), true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
