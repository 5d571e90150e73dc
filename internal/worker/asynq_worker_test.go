package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/queue"

	"github.com/hibiken/asynq"
)

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(nil)

	NewConsumer(&provider.Container{}).Register(nil)
}

func TestHandleEmailSendInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskEmailSend, []byte("{not-json"))
	err := consumer.handleEmailSend(context.Background(), task)
	if err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload must not be retried, got %v", err)
	}
}

func TestHandleEmailSendSkipEmptyReceiver(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewEmailSendTask(queue.EmailSendPayload{
		To:      "   ",
		Subject: "hello",
		Body:    "body",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleEmailSend(context.Background(), task); err != nil {
		t.Fatalf("empty receiver should be skipped, got %v", err)
	}
}

func TestHandleEmailSendSkipWithoutEmailService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewEmailSendTask(queue.EmailSendPayload{
		To:      "user@example.com",
		Subject: "hello",
		Body:    "body",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleEmailSend(context.Background(), task); err != nil {
		t.Fatalf("missing email service should not fail the task, got %v", err)
	}
}

func TestHandleNotificationDispatchInvalidPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskNotificationDispatch, []byte("{not-json"))
	err := consumer.handleNotificationDispatch(context.Background(), task)
	if err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload must not be retried, got %v", err)
	}
}

func TestHandleNotificationDispatchSkipInvalidUser(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
		UserID: 0,
		Event:  "purchase_created",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("invalid user payload should be skipped, got %v", err)
	}
}

func TestHandleNotificationDispatchSkipWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
		UserID: 7,
		Event:  "purchase_created",
		Title:  "您收到一张礼品卡",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("missing notification service should not fail the task, got %v", err)
	}
}
