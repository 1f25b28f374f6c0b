package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cvstudio/internal/cv"
	"cvstudio/internal/errcode"
	"cvstudio/internal/export"
	"cvstudio/internal/pdf"
	"cvstudio/internal/repository"
	"cvstudio/internal/storage"
	"cvstudio/internal/tasks"
)

// ExportTaskHandler 消费 PDF 导出任务：加载 CV、渲染 HTML、
// 打印 PDF、上传对象存储、回写渲染元数据并通知前端。
type ExportTaskHandler struct {
	repo        repository.Repository
	storage     *storage.Client
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(
	repo repository.Repository,
	storage *storage.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		repo:        repo,
		storage:     storage,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.PDFExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("cv_id", payload.CVID),
		slog.Uint64("user_id", uint64(payload.OwnerID)),
	)
	log.Info("Starting CV PDF export task...")

	record, err := h.repo.Get(ctx, payload.CVID, payload.OwnerID)
	if err != nil {
		if errors.Is(err, cv.ErrNotFound) {
			// CV 在排队期间被删除或换了属主，任务悄悄结束。
			log.Warn("cv not found, skipping task")
			return nil
		}
		log.Error("load cv failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := ExportNotifyMessage{
			Status:        "error",
			CVID:          record.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishExportNotify(ctx, payload.OwnerID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	var missingKeys []string
	renderer := export.NewRenderer(func(ctx context.Context, objectKey string) (string, error) {
		src, err := h.resolvePhoto(ctx, objectKey)
		if err != nil {
			if storage.IsNoSuchKey(err) {
				missingKeys = append(missingKeys, objectKey)
				return "", nil
			}
			return "", err
		}
		return src, nil
	})

	htmlContent, err := renderer.Render(ctx, record)
	if err != nil {
		log.Error("render cv html failed", slog.Any("error", err))
		return err
	}

	result, err := pdf.RenderHTML(htmlContent)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("generated-cvs/%d/%s.pdf", payload.OwnerID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(result.PDF), int64(len(result.PDF)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	previewURL, err := h.uploadPreview(ctx, record.ID, result.Preview)
	if err != nil {
		// 缩略图失败不中断导出，PDF 本体已经就绪。
		log.Warn("upload cv preview failed", slog.Any("error", err))
	}

	render := repository.RenderState{
		PDFObjectKey: objectName,
		PreviewURL:   previewURL,
		Status:       "completed",
	}
	if err := h.repo.UpdateRender(ctx, record.ID, payload.OwnerID, render); err != nil {
		log.Error("update cv render state failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		CVID:          record.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if len(missingKeys) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "部分图片资源缺失/无效，已自动跳过并继续生成"
		notify.MissingKeys = missingKeys
		log.Warn("pdf generated with missing assets",
			slog.Int("missing_count", len(missingKeys)),
			slog.Any("missing_keys", missingKeys),
		)
	}
	if err := h.publishExportNotify(ctx, payload.OwnerID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("CV PDF export task completed successfully.")
	return nil
}

// resolvePhoto 把对象键换成可直接嵌入打印页的 data URI。
func (h *ExportTaskHandler) resolvePhoto(ctx context.Context, objectKey string) (string, error) {
	obj, err := h.storage.GetObject(ctx, objectKey)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = obj.Close()
	}()

	stat, err := obj.Stat()
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("read photo object %q: %w", objectKey, err)
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (h *ExportTaskHandler) uploadPreview(ctx context.Context, cvID string, preview []byte) (string, error) {
	if len(preview) == 0 {
		return "", nil
	}

	const presignTTL = 7 * 24 * time.Hour

	objectName := fmt.Sprintf("thumbnails/cv/%s/preview.png", cvID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(preview), int64(len(preview)), "image/png"); err != nil {
		return "", fmt.Errorf("upload preview image: %w", err)
	}

	presignedURL, err := h.storage.GeneratePresignedURL(ctx, objectName, presignTTL)
	if err != nil {
		return "", fmt.Errorf("generate preview presigned url: %w", err)
	}
	return presignedURL, nil
}

func (h *ExportTaskHandler) publishExportNotify(ctx context.Context, userID uint, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
