package models

// 状态统计项
type StatusBreakdown struct {
	Status Status  `json:"status"`
	Count  int     `json:"count"`
	Value  float64 `json:"value"`
}

// 数据看板响应结构
type DashboardDataResponse struct {
	ProjectCount   int                `json:"projectCount"`   // 项目总数
	PortfolioValue float64            `json:"portfolioValue"` // 项目总金额
	CountByStatus  map[Status]int     `json:"countByStatus"`  // 各状态项目数量
	ValueByStatus  map[Status]float64 `json:"valueByStatus"`  // 各状态项目金额
	Breakdown      []StatusBreakdown  `json:"breakdown"`      // 按配置顺序排列的状态统计
	Projects       []ProjectRecord    `json:"projects"`       // 筛选后的项目
	RecentProjects []ProjectRecord    `json:"recentProjects"` // 最近创建的项目
}

// 截止日期提醒项
type DeadlineAlert struct {
	ProjectID     string `json:"projectId"`
	Title         string `json:"title"`
	Status        Status `json:"status"`
	DaysRemaining int    `json:"daysRemaining"`
	Overdue       bool   `json:"overdue"`
}
