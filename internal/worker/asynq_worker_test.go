package worker

import (
	"context"
	"testing"

	"github.com/bestie-next/internal/provider"
	"github.com/bestie-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleReceiptEmailNilTask(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	if err := consumer.handleReceiptEmail(context.Background(), nil); err != nil {
		t.Fatalf("nil task should be skipped, got %v", err)
	}
}

func TestHandleReceiptEmailInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskReceiptEmail, []byte("{not-json"))
	if err := consumer.handleReceiptEmail(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should return an error")
	}
}

func TestHandleReceiptEmailZeroReceiptID(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskReceiptEmail, []byte(`{"receipt_id":0}`))
	if err := consumer.handleReceiptEmail(context.Background(), task); err != nil {
		t.Fatalf("zero receipt id should be skipped, got %v", err)
	}
}
