package queue

import (
	"encoding/json"

	"github.com/bestie-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReceiptEmail 捐赠收据邮件任务
	TaskReceiptEmail = constants.TaskReceiptEmail
)

// ReceiptEmailPayload 收据邮件任务载荷
type ReceiptEmailPayload struct {
	ReceiptID uint `json:"receipt_id"`
}

// NewReceiptEmailTask 创建收据邮件任务
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptEmail, body), nil
}
