package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFExport = "pdf:export"
)

// PDFExportPayload 描述一次 CV 导出所需的最小信息。
// OwnerID 在入队时已由 API 校验过归属，worker 端用它做二次过滤。
type PDFExportPayload struct {
	CVID          string `json:"cv_id"`
	OwnerID       uint   `json:"owner_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFExportTask 构造一个新的 CV PDF 导出任务。
func NewPDFExportTask(cvID string, ownerID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PDFExportPayload{
		CVID:          cvID,
		OwnerID:       ownerID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFExport, payload), nil
}
