package service

import (
	"sort"

	"github.com/BerniceZTT/bid_tracker/models"
)

// DefaultRecentCount 看板默认展示的最近项目数
const DefaultRecentCount = 5

// DashboardQuery 看板筛选条件
type DashboardQuery struct {
	Statuses []models.Status
	Search   string
	Recent   int
}

// BuildDashboard 基于快照生成看板数据，统计值覆盖全部项目，列表按条件筛选
func BuildDashboard(records []models.ProjectRecord, configured []models.Status, q DashboardQuery) models.DashboardDataResponse {
	recent := q.Recent
	if recent == 0 {
		recent = DefaultRecentCount
	}

	counts := CountByStatus(records)
	values := ValueByStatus(records)

	filtered := Search(FilterByStatuses(records, q.Statuses), q.Search)

	return models.DashboardDataResponse{
		ProjectCount:   len(records),
		PortfolioValue: TotalValue(records),
		CountByStatus:  counts,
		ValueByStatus:  values,
		Breakdown:      breakdown(counts, values, configured),
		Projects:       filtered,
		RecentProjects: MostRecent(records, recent),
	}
}

// breakdown 按配置顺序输出状态统计，未配置但出现在数据中的状态按字母序追加
func breakdown(counts map[models.Status]int, values map[models.Status]float64, configured []models.Status) []models.StatusBreakdown {
	out := make([]models.StatusBreakdown, 0, len(counts))
	seen := make(map[models.Status]bool, len(configured))
	for _, st := range configured {
		seen[st] = true
		if n, ok := counts[st]; ok {
			out = append(out, models.StatusBreakdown{Status: st, Count: n, Value: values[st]})
		}
	}

	var extra []models.Status
	for st := range counts {
		if !seen[st] {
			extra = append(extra, st)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, st := range extra {
		out = append(out, models.StatusBreakdown{Status: st, Count: counts[st], Value: values[st]})
	}
	return out
}
