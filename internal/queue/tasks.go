package queue

import (
	"encoding/json"

	"github.com/giftvault/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskEmailSend 邮件发送任务
	TaskEmailSend = constants.TaskEmailSend
	// TaskNotificationDispatch 通知分发任务
	TaskNotificationDispatch = constants.TaskNotificationDispatch
)

// EmailSendPayload 邮件发送任务载荷
type EmailSendPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationDispatchPayload 通知分发任务载荷
type NotificationDispatchPayload struct {
	UserID       uint   `json:"user_id"`
	Event        string `json:"event"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
}

// NewEmailSendTask 创建邮件发送任务
func NewEmailSendTask(payload EmailSendPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEmailSend, body), nil
}

// NewNotificationDispatchTask 创建通知分发任务
func NewNotificationDispatchTask(payload NotificationDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDispatch, body), nil
}
