package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/repository"
	"github.com/BerniceZTT/bid_tracker/service"
	"github.com/BerniceZTT/bid_tracker/utils"
)

const maxBatchIDAttempts = 10

// ProjectController 项目增删改查
type ProjectController struct {
	store *repository.Store
}

// NewProjectController 创建项目控制器
func NewProjectController(store *repository.Store) *ProjectController {
	return &ProjectController{store: store}
}

// GetAllProjects 获取项目列表，支持 status / statuses / q 筛选
func (pc *ProjectController) GetAllProjects(c *gin.Context) {
	status := c.Query("status")
	statuses := c.Query("statuses")
	search := c.Query("q")

	utils.LogApiRequest("GET", "/api/projects", nil, nil, map[string]string{
		"status":   status,
		"statuses": statuses,
		"q":        search,
	})

	records := pc.store.Records()
	records = service.FilterByStatus(records, models.Status(status))
	records = service.FilterByStatuses(records, parseStatuses(statuses))
	records = service.Search(records, search)

	utils.SuccessResponse(c, models.ProjectListResponse{
		Projects: records,
		Total:    len(records),
	}, "")
}

// GetProjectDetail 获取项目详情
func (pc *ProjectController) GetProjectDetail(c *gin.Context) {
	rec, err := pc.store.Get(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.SuccessResponse(c, rec, "")
}

// CreateProject 创建项目
func (pc *ProjectController) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(utils.CreateBadRequestError("无效的请求参数: "+err.Error()))
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rec, err := pc.store.Add(c.Request.Context(), models.ProjectRecord{
		Title:     strings.TrimSpace(req.Title),
		Client:    strings.TrimSpace(req.Client),
		Notes:     req.Notes,
		Status:    req.Status,
		DriveLink: strings.TrimSpace(req.DriveLink),
		Deadline:  deadline,
		Value:     req.Value,
		Priority:  req.Priority,
	})
	if err != nil && !utils.IsPersistenceError(err) {
		_ = c.Error(err)
		return
	}

	logCurrentUser(c, "创建项目", rec.ID)
	utils.MutationResponse(c, rec, err, "项目创建成功", http.StatusCreated)
}

// UpdateProject 更新项目，只修改请求中出现的字段
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(utils.CreateBadRequestError("无效的请求参数: "+err.Error()))
		return
	}

	patch, err := buildPatch(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rec, err := pc.store.Update(c.Request.Context(), id, patch)
	if err != nil && !utils.IsPersistenceError(err) {
		_ = c.Error(err)
		return
	}

	logCurrentUser(c, "更新项目", id)
	utils.MutationResponse(c, rec, err, "项目更新成功")
}

// UpdateProjectStatus 修改项目状态
func (pc *ProjectController) UpdateProjectStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(utils.CreateBadRequestError("无效的请求参数: "+err.Error()))
		return
	}

	rec, err := pc.store.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil && !utils.IsPersistenceError(err) {
		_ = c.Error(err)
		return
	}

	logCurrentUser(c, "修改项目状态", id)
	utils.MutationResponse(c, rec, err, "项目状态已更新")
}

// DeleteProject 删除项目，ID不存在时同样返回成功
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	id := c.Param("id")

	deleted, err := pc.store.Delete(c.Request.Context(), id)

	logCurrentUser(c, "删除项目", id)
	utils.MutationResponse(c, gin.H{"id": id, "deleted": deleted}, err, "项目删除成功")
}

// ReplaceProjects 批量编辑后整体替换项目集合
func (pc *ProjectController) ReplaceProjects(c *gin.Context) {
	var rows []models.ProjectRecord
	if err := c.ShouldBindJSON(&rows); err != nil {
		_ = c.Error(utils.CreateBadRequestError("无效的请求参数: " + err.Error()))
		return
	}

	records, err := pc.prepareRows(rows)
	if err != nil {
		_ = c.Error(err)
		return
	}

	err = pc.store.ReplaceAll(c.Request.Context(), records)
	saved := pc.store.Records()

	logCurrentUser(c, "批量替换项目", "")
	utils.MutationResponse(c, models.ProjectListResponse{
		Projects: saved,
		Total:    len(saved),
	}, err, "项目已保存")
}

// prepareRows 校验批量编辑的每一行：新行分配ID、补全状态和时间，重复ID或无效行返回校验错误
func (pc *ProjectController) prepareRows(rows []models.ProjectRecord) ([]models.ProjectRecord, error) {
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		id := strings.TrimSpace(rows[i].ID)
		if id == "" {
			continue
		}
		if seen[id] {
			return nil, utils.NewValidationError(fmt.Sprintf("projects[%d].id", i), fmt.Sprintf("duplicate id %s", id))
		}
		seen[id] = true
	}

	records := make([]models.ProjectRecord, 0, len(rows))
	for i, rec := range rows {
		rec = rec.Clone()
		rec.ID = strings.TrimSpace(rec.ID)
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Client = strings.TrimSpace(rec.Client)
		rec.DriveLink = strings.TrimSpace(rec.DriveLink)

		if rec.ID == "" {
			id, err := pc.freshID(seen)
			if err != nil {
				return nil, err
			}
			rec.ID = id
			seen[id] = true
		}
		if rec.Status == "" {
			rec.Status = pc.store.DefaultStatus()
		}
		pc.store.FillTimestamps(&rec)

		if err := pc.store.Validate(rec); err != nil {
			var ve *utils.ValidationError
			if errors.As(err, &ve) {
				return nil, utils.NewValidationError(fmt.Sprintf("projects[%d].%s", i, ve.Field), ve.Message)
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// freshID 生成既不在当前集合也不在本批次中的ID
func (pc *ProjectController) freshID(taken map[string]bool) (string, error) {
	for attempt := 0; attempt < maxBatchIDAttempts; attempt++ {
		id, err := pc.store.GenerateID()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		if !taken[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unique id after %d attempts", maxBatchIDAttempts)
}

// GetStatuses 获取配置的项目状态
func (pc *ProjectController) GetStatuses(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"statuses": pc.store.Statuses()}, "")
}

// buildPatch 将请求转换为部分更新，deadline 为空字符串表示清除
func buildPatch(req models.UpdateProjectRequest) (models.ProjectPatch, error) {
	patch := models.ProjectPatch{
		Title:     trimmed(req.Title),
		Client:    trimmed(req.Client),
		Notes:     req.Notes,
		Status:    req.Status,
		DriveLink: trimmed(req.DriveLink),
		Value:     req.Value,
		Priority:  req.Priority,
	}
	if req.Deadline != nil {
		deadline, err := utils.ParseDate(*req.Deadline)
		if err != nil {
			return models.ProjectPatch{}, err
		}
		if deadline == nil {
			patch.ClearDeadline = true
		} else {
			patch.Deadline = deadline
		}
	}
	return patch, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func parseStatuses(value string) []models.Status {
	parts := utils.SplitList(value)
	if len(parts) == 0 {
		return nil
	}
	statuses := make([]models.Status, len(parts))
	for i, p := range parts {
		statuses[i] = models.Status(p)
	}
	return statuses
}

// logCurrentUser 记录执行写操作的用户
func logCurrentUser(c *gin.Context, action, id string) {
	username := ""
	if user, err := utils.GetUser(c); err == nil {
		username = user.Username
	}
	utils.Logger.Info().
		Str("username", username).
		Str("projectId", id).
		Msg(action)
}
