package models

import (
	"time"
)

// Status 项目所处的投标阶段
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusWriting         Status = "Writing"
	StatusSubmitted       Status = "Submitted"
	StatusPendingResponse Status = "Pending Response"
	StatusAwarded         Status = "Awarded"
	StatusClosed          Status = "Closed"
)

// DefaultStatuses 未配置时使用的默认状态集合
var DefaultStatuses = []Status{
	StatusDraft,
	StatusWriting,
	StatusSubmitted,
	StatusPendingResponse,
	StatusAwarded,
	StatusClosed,
}

// Priority 项目优先级
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ProjectRecord 投标/项目记录
type ProjectRecord struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title" validate:"required"`
	Client      string     `json:"client" bson:"client"`
	Notes       string     `json:"notes" bson:"notes"`
	Status      Status     `json:"status" bson:"status"`
	DriveLink   string     `json:"drive_link" bson:"driveLink"`
	CreatedDate time.Time  `json:"created" bson:"created"`
	Deadline    *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Value       float64    `json:"value" bson:"value" validate:"gte=0"`
	Priority    Priority   `json:"priority,omitempty" bson:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	LastUpdated time.Time  `json:"last_updated" bson:"lastUpdated"`
}

// Clone 深拷贝记录，不共享指针
func (r ProjectRecord) Clone() ProjectRecord {
	if r.Deadline != nil {
		d := *r.Deadline
		r.Deadline = &d
	}
	return r
}

// ProjectPatch 项目部分更新，nil 字段保持不变
type ProjectPatch struct {
	Title         *string
	Client        *string
	Notes         *string
	Status        *Status
	DriveLink     *string
	Deadline      *time.Time
	ClearDeadline bool
	Value         *float64
	Priority      *Priority
}

// Apply 将非空字段写入记录
func (p ProjectPatch) Apply(rec *ProjectRecord) {
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.Client != nil {
		rec.Client = *p.Client
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.DriveLink != nil {
		rec.DriveLink = *p.DriveLink
	}
	if p.ClearDeadline {
		rec.Deadline = nil
	} else if p.Deadline != nil {
		d := *p.Deadline
		rec.Deadline = &d
	}
	if p.Value != nil {
		rec.Value = *p.Value
	}
	if p.Priority != nil {
		rec.Priority = *p.Priority
	}
}

// 创建项目请求
type CreateProjectRequest struct {
	Title     string   `json:"title"`
	Client    string   `json:"client"`
	Notes     string   `json:"notes"`
	Status    Status   `json:"status"`
	DriveLink string   `json:"drive_link"`
	Deadline  string   `json:"deadline"`
	Value     float64  `json:"value"`
	Priority  Priority `json:"priority"`
}

// 更新项目请求，省略的字段不修改
type UpdateProjectRequest struct {
	Title     *string   `json:"title"`
	Client    *string   `json:"client"`
	Notes     *string   `json:"notes"`
	Status    *Status   `json:"status"`
	DriveLink *string   `json:"drive_link"`
	Deadline  *string   `json:"deadline"`
	Value     *float64  `json:"value"`
	Priority  *Priority `json:"priority"`
}

// 更新项目状态请求
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type ProjectListResponse struct {
	Projects []ProjectRecord `json:"projects"`
	Total    int             `json:"total"`
}
