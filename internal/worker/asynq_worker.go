package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bestie-next/internal/logger"
	"github.com/bestie-next/internal/provider"
	"github.com/bestie-next/internal/queue"
	"github.com/bestie-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReceiptEmail, c.handleReceiptEmail)
}

func (c *Consumer) handleReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.ReceiptID == 0 {
		logger.Debugw("worker_receipt_email_skip_invalid_payload", "receipt_id", payload.ReceiptID)
		return nil
	}
	receipt, err := c.ReceiptRepo.GetByID(payload.ReceiptID)
	if err != nil {
		logger.Warnw("worker_receipt_email_fetch_failed", "receipt_id", payload.ReceiptID, "error", err)
		return err
	}
	if receipt == nil {
		logger.Debugw("worker_receipt_email_skip_not_found", "receipt_id", payload.ReceiptID)
		return nil
	}
	receiverEmail := strings.TrimSpace(receipt.DonorEmail)
	if receiverEmail == "" {
		logger.Debugw("worker_receipt_email_skip_empty_receiver", "receipt_id", receipt.ID, "receipt_no", receipt.ReceiptNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_receipt_email_skip_email_service_nil", "receipt_id", receipt.ID, "receipt_no", receipt.ReceiptNo)
		return nil
	}
	if err := c.EmailService.SendReceiptEmail(receiverEmail, service.BuildReceiptEmailInput(receipt)); err != nil {
		logger.Warnw("worker_receipt_email_send_failed",
			"receipt_id", receipt.ID,
			"receipt_no", receipt.ReceiptNo,
			"receiver_email", receiverEmail,
			"error", err,
		)
		return err
	}
	return nil
}
