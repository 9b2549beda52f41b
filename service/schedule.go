package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"
)

// RecordSource 提供项目快照
type RecordSource interface {
	Records() []models.ProjectRecord
}

// terminalStatuses 已结束的项目不再提醒
var terminalStatuses = map[models.Status]bool{
	models.StatusAwarded: true,
	models.StatusClosed:  true,
}

// DeadlineSweeper 每日检查即将到期和已逾期的项目
type DeadlineSweeper struct {
	store    RecordSource
	warnDays int
	now      func() time.Time
	cron     *cron.Cron
}

// NewDeadlineSweeper 创建截止日期检查任务
func NewDeadlineSweeper(store RecordSource, warnDays int) *DeadlineSweeper {
	return &DeadlineSweeper{store: store, warnDays: warnDays, now: time.Now}
}

// Start 按 cron 表达式（含秒）定时执行检查
func (s *DeadlineSweeper) Start(schedule string) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(schedule, func() {
		s.Sweep(context.Background(), s.now())
	}); err != nil {
		return fmt.Errorf("invalid deadline sweep schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	utils.Logger.Info().Str("schedule", schedule).Int("warnDays", s.warnDays).Msg("截止日期检查任务已启动")
	return nil
}

// Stop 停止定时任务并等待正在执行的检查结束
func (s *DeadlineSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep 返回逾期或在提醒天数内到期的未结束项目，按剩余天数升序
func (s *DeadlineSweeper) Sweep(ctx context.Context, today time.Time) []models.DeadlineAlert {
	if ctx.Err() != nil {
		return nil
	}
	records := s.store.Records()

	var alerts []models.DeadlineAlert
	for _, rec := range records {
		if terminalStatuses[rec.Status] {
			continue
		}
		days, ok := DaysRemaining(rec, today)
		if !ok || days > s.warnDays {
			continue
		}
		alerts = append(alerts, models.DeadlineAlert{
			ProjectID:     rec.ID,
			Title:         rec.Title,
			Status:        rec.Status,
			DaysRemaining: days,
			Overdue:       days < 0,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysRemaining < alerts[j].DaysRemaining
	})

	for _, a := range alerts {
		event := utils.Logger.Info()
		if a.Overdue {
			event = utils.Logger.Warn()
		}
		event.
			Str("projectId", a.ProjectID).
			Str("title", a.Title).
			Str("status", string(a.Status)).
			Int("daysRemaining", a.DaysRemaining).
			Msg("项目截止日期提醒")
	}
	utils.Logger.Info().Int("projects", len(records)).Int("alerts", len(alerts)).Msg("截止日期检查完成")
	return alerts
}
