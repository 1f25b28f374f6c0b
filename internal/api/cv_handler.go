package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/cv"
	"cvstudio/internal/export"
	"cvstudio/internal/repository"
	"cvstudio/internal/storage"
	"cvstudio/internal/tasks"
)

// CVHandler 负责处理 CV 的增删改查与导出相关请求。
// asynqClient 与 storage 在内存后端（演示模式）下可以为 nil，
// 对应的下载端点会返回 409。
type CVHandler struct {
	repo        repository.Repository
	asynqClient *asynq.Client
	storage     *storage.Client
}

// NewCVHandler 构造 CVHandler。
func NewCVHandler(repo repository.Repository, asynqClient *asynq.Client, storageClient *storage.Client) *CVHandler {
	return &CVHandler{
		repo:        repo,
		asynqClient: asynqClient,
		storage:     storageClient,
	}
}

type createCVRequest struct {
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content"`
	Template string          `json:"template"`
}

type patchCVRequest struct {
	Title    *string         `json:"title"`
	Content  json.RawMessage `json:"content"`
	Template *string         `json:"template"`
}

type cvResponse struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Content    cv.Document `json:"content"`
	Template   string      `json:"template"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	PreviewURL string      `json:"preview_image_url,omitempty"`
	Status     string      `json:"status,omitempty"`
}

func newCVResponse(record cv.CV) cvResponse {
	return cvResponse{
		ID:         record.ID,
		Title:      record.Title,
		Content:    record.Content,
		Template:   string(record.Template),
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
		PreviewURL: record.PreviewURL,
		Status:     record.Status,
	}
}

// ListCVs 列出当前用户的全部 CV。
func (h *CVHandler) ListCVs(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	records, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		Internal(c, "failed to list cvs")
		return
	}

	items := make([]cvResponse, 0, len(records))
	for _, record := range records {
		items = append(items, newCVResponse(record))
	}
	c.JSON(http.StatusOK, items)
}

// CreateCV 保存一份新的 CV。title、content、template 三者缺一不可。
func (h *CVHandler) CreateCV(c *gin.Context) {
	var req createCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Title == "" || len(req.Content) == 0 || req.Template == "" {
		BadRequest(c, "title, content and template are required")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := cv.ParseDocument(req.Content)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	template, err := cv.ParseTemplate(req.Template)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	record, err := h.repo.Create(c.Request.Context(), userID, req.Title, doc, template)
	if err != nil {
		Internal(c, "failed to create cv")
		return
	}

	c.JSON(http.StatusCreated, newCVResponse(record))
}

// GetCV 返回指定 ID 的 CV。
func (h *CVHandler) GetCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.repo.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			NotFound(c, "CV not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	c.JSON(http.StatusOK, newCVResponse(record))
}

// PatchCV 对 CV 做部分更新；目标不存在时明确返回 404，绝不静默成功。
func (h *CVHandler) PatchCV(c *gin.Context) {
	var req patchCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var patch cv.Patch
	if req.Title != nil {
		if *req.Title == "" {
			BadRequest(c, "title must not be empty")
			return
		}
		patch.Title = req.Title
	}
	if len(req.Content) > 0 {
		doc, err := cv.ParseDocument(req.Content)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		patch.Content = &doc
	}
	if req.Template != nil {
		template, err := cv.ParseTemplate(*req.Template)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		patch.Template = &template
	}

	record, err := h.repo.Update(c.Request.Context(), c.Param("id"), userID, patch)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			NotFound(c, "CV not found")
			return
		}
		Internal(c, "failed to update cv")
		return
	}

	c.JSON(http.StatusOK, newCVResponse(record))
}

// DeleteCV 删除指定 CV。删除不存在的 CV 同样返回成功（幂等）。
func (h *CVHandler) DeleteCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		Internal(c, "failed to delete cv")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportCV 以附件形式返回 CV 的规范 JSON 导出。
func (h *CVHandler) ExportCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	record, err := h.repo.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			NotFound(c, "CV not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	data, err := export.JSON(record)
	if err != nil {
		Internal(c, "failed to export cv")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(record.Title)+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// DownloadCV 将 PDF 导出任务入队并立即返回 202。
func (h *CVHandler) DownloadCV(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if h.asynqClient == nil {
		Conflict(c, "pdf export is not available in demo mode")
		return
	}

	record, err := h.repo.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			NotFound(c, "CV not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPDFExportTask(record.ID, userID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue pdf export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "PDF export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成 CV PDF 的预签名下载链接；PDF 尚未生成时返回 409。
func (h *CVHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if h.storage == nil {
		Conflict(c, "pdf export is not available in demo mode")
		return
	}

	record, err := h.repo.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			NotFound(c, "CV not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	if record.PDFObjectKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	params := map[string]string{
		"response-content-disposition": `attachment; filename="` + export.PDFFilename(record.Title) + `"`,
	}
	signedURL, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), record.PDFObjectKey, 5*time.Minute, params)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
