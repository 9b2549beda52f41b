package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"
)

// maxIDAttempts bounds regeneration when a fresh id collides with a live one.
const maxIDAttempts = 10

// StoreOptions 记录存储配置
type StoreOptions struct {
	Statuses      []models.Status
	RequireClient bool
	Now           func() time.Time
	NewID         func() (string, error)
}

// Store 持有项目集合，每次变更后整体写回后端
type Store struct {
	mu            sync.Mutex
	backend       Backend
	records       []models.ProjectRecord
	statuses      []models.Status
	statusSet     map[models.Status]bool
	requireClient bool
	now           func() time.Time
	newID         func() (string, error)
	validate      *validator.Validate
}

// NewStore 创建记录存储
func NewStore(backend Backend, opts StoreOptions) *Store {
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = models.DefaultStatuses
	}
	s := &Store{
		backend:       backend,
		statuses:      append([]models.Status(nil), statuses...),
		statusSet:     make(map[models.Status]bool, len(statuses)),
		requireClient: opts.RequireClient,
		now:           opts.Now,
		newID:         opts.NewID,
		validate:      validator.New(),
	}
	for _, st := range statuses {
		s.statusSet[st] = true
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = GenerateID
	}
	return s
}

// Statuses 返回配置的状态集合
func (s *Store) Statuses() []models.Status {
	return append([]models.Status(nil), s.statuses...)
}

// BackendName 当前存储后端名称
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Load 从后端重新读取全部记录，读取失败时返回空集合
func (s *Store) Load(ctx context.Context) []models.ProjectRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNoData):
		records = nil
	case err != nil:
		utils.Logger.Warn().
			Err(&utils.PersistenceError{Op: "load", Err: err}).
			Str("backend", s.backend.Name()).
			Msg("读取项目数据失败，使用空集合")
		records = nil
	}

	s.records = cloneRecords(records)
	utils.LogStoreOperation("load", s.backend.Name(), "", len(s.records))
	return cloneRecords(s.records)
}

// Records 返回当前集合的快照
func (s *Store) Records() []models.ProjectRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records)
}

// Get 按ID查找记录
func (s *Store) Get(id string) (models.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.ProjectRecord{}, fmt.Errorf("project %s: %w", id, utils.ErrNotFound)
	}
	return s.records[idx].Clone(), nil
}

// GenerateID 生成在当前集合中唯一的ID
func (s *Store) GenerateID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniqueID()
}

// Add 新增记录并保存。保存失败时同时返回记录和 *utils.PersistenceError
func (s *Store) Add(ctx context.Context, rec models.ProjectRecord) (models.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = rec.Clone()
	if rec.Status == "" {
		rec.Status = s.DefaultStatus()
	}
	if err := s.check(rec); err != nil {
		return models.ProjectRecord{}, err
	}

	id, err := s.uniqueID()
	if err != nil {
		return models.ProjectRecord{}, fmt.Errorf("generate id: %w", err)
	}
	rec.ID = id

	s.FillTimestamps(&rec)

	s.records = append(s.records, rec)
	utils.LogStoreOperation("add", s.backend.Name(), rec.ID, len(s.records))
	return rec.Clone(), s.saveLocked(ctx)
}

// Update 按ID修改记录字段
func (s *Store) Update(ctx context.Context, id string, patch models.ProjectPatch) (models.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.ProjectRecord{}, fmt.Errorf("project %s: %w", id, utils.ErrNotFound)
	}

	updated := s.records[idx].Clone()
	patch.Apply(&updated)
	if err := s.check(updated); err != nil {
		return models.ProjectRecord{}, err
	}

	updated.LastUpdated = s.timestamp()
	if updated.LastUpdated.Before(updated.CreatedDate) {
		updated.LastUpdated = updated.CreatedDate
	}
	normalize(&updated)

	s.records[idx] = updated
	utils.LogStoreOperation("update", s.backend.Name(), id, len(s.records))
	return updated.Clone(), s.saveLocked(ctx)
}

// UpdateStatus 仅修改状态
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) (models.ProjectRecord, error) {
	return s.Update(ctx, id, models.ProjectPatch{Status: &status})
}

// Delete 删除记录，ID不存在时不做任何操作
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	utils.LogStoreOperation("delete", s.backend.Name(), id, len(s.records))
	return true, s.saveLocked(ctx)
}

// ReplaceAll 整体替换集合（批量编辑），不做逐条校验
func (s *Store) ReplaceAll(ctx context.Context, records []models.ProjectRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = cloneRecords(records)
	for i := range s.records {
		normalize(&s.records[i])
	}
	utils.LogStoreOperation("replace_all", s.backend.Name(), "", len(s.records))
	return s.saveLocked(ctx)
}

// Save 将整个集合写回后端
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if err := s.backend.Save(ctx, cloneRecords(s.records)); err != nil {
		return &utils.PersistenceError{Op: "save", Err: err}
	}
	utils.LogStoreOperation("save", s.backend.Name(), "", len(s.records))
	return nil
}

// Validate 按新增记录的规则校验，不修改集合
func (s *Store) Validate(rec models.ProjectRecord) error {
	return s.check(rec)
}

// FillTimestamps 补全创建与更新时间：都为空时取当前时间，只有一个时互相复制，
// 更新时间不早于创建时间
func (s *Store) FillTimestamps(rec *models.ProjectRecord) {
	now := s.timestamp()
	switch {
	case rec.CreatedDate.IsZero() && rec.LastUpdated.IsZero():
		rec.CreatedDate = now
		rec.LastUpdated = now
	case rec.CreatedDate.IsZero():
		rec.CreatedDate = rec.LastUpdated
	case rec.LastUpdated.IsZero():
		rec.LastUpdated = rec.CreatedDate
	}
	if rec.LastUpdated.Before(rec.CreatedDate) {
		rec.LastUpdated = rec.CreatedDate
	}
	normalize(rec)
}

// check 校验必填字段、状态与金额
func (s *Store) check(rec models.ProjectRecord) error {
	if strings.TrimSpace(rec.Title) == "" {
		return utils.NewValidationError("title", "is required")
	}
	if s.requireClient && strings.TrimSpace(rec.Client) == "" {
		return utils.NewValidationError("client", "is required")
	}
	if !s.statusSet[rec.Status] {
		return utils.NewValidationError("status", fmt.Sprintf("must be one of %s", joinStatuses(s.statuses)))
	}
	if err := s.validate.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return utils.NewValidationError(strings.ToLower(fe.Field()), describeTag(fe))
		}
		return utils.NewValidationError("", err.Error())
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// DefaultStatus 新增记录未指定状态时使用的状态
func (s *Store) DefaultStatus() models.Status {
	if s.statusSet[models.StatusWriting] {
		return models.StatusWriting
	}
	return s.statuses[0]
}

func (s *Store) uniqueID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		if s.indexOf(id) < 0 {
			return id, nil
		}
		utils.Logger.Warn().Str("id", id).Msg("生成的ID已存在，重新生成")
	}
	return "", fmt.Errorf("no unique id after %d attempts", maxIDAttempts)
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func normalize(rec *models.ProjectRecord) {
	rec.CreatedDate = rec.CreatedDate.UTC()
	rec.LastUpdated = rec.LastUpdated.UTC()
	if rec.Deadline != nil {
		d := rec.Deadline.UTC()
		rec.Deadline = &d
	}
}

func joinStatuses(statuses []models.Status) string {
	parts := make([]string, len(statuses))
	for i, st := range statuses {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}

func cloneRecords(records []models.ProjectRecord) []models.ProjectRecord {
	out := make([]models.ProjectRecord, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
