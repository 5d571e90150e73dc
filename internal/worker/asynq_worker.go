package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/service"

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
	mux.HandleFunc(queue.TaskEmailSend, c.handleEmailSend)
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
}

func (c *Consumer) handleEmailSend(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_email_send_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.EmailSendPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_email_send_unmarshal_failed", "error", err)
		// 坏载荷重试不会变好，直接丢弃
		return fmt.Errorf("unmarshal email payload: %v: %w", err, asynq.SkipRetry)
	}
	to := strings.TrimSpace(payload.To)
	if to == "" {
		logger.Debugw("worker_email_send_skip_empty_receiver")
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_email_send_skip_email_service_nil", "receiver_email", to)
		return nil
	}
	if err := c.EmailService.SendCustomEmail(to, payload.Subject, payload.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRecipientRejected):
			logger.Debugw("worker_email_send_skip_recipient_rejected", "receiver_email", to)
			return nil
		case errors.Is(err, service.ErrInvalidEmail):
			logger.Debugw("worker_email_send_skip_invalid_receiver", "receiver_email", to)
			return nil
		default:
			logger.Warnw("worker_email_send_failed", "receiver_email", to, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_dispatch_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_dispatch_unmarshal_failed", "error", err)
		return fmt.Errorf("unmarshal notification payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notification_dispatch_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_dispatch_skip_service_nil", "user_id", payload.UserID)
		return nil
	}
	if err := c.NotificationService.Dispatch(ctx, payload); err != nil {
		logger.Warnw("worker_notification_dispatch_failed",
			"user_id", payload.UserID,
			"event", payload.Event,
			"error", err,
		)
		return err
	}
	return nil
}
