package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildPurchaseEmail(t *testing.T) {
	tests := []struct {
		name                string
		input               PurchaseEmailInput
		wantSubjectContains []string
		wantBodyContains    []string
		wantBodyExcludes    []string
	}{
		{
			name: "with_recipient_and_message",
			input: PurchaseEmailInput{
				RecipientName: "李雷",
				CardTitle:     "咖啡畅饮卡",
				QRCode:        "GV-TEST-0001",
				Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
				Currency:      "USD",
				Message:       "生日快乐！",
			},
			wantSubjectContains: []string{"您收到一张礼品卡", "咖啡畅饮卡"},
			wantBodyContains: []string{
				"李雷，您好",
				"面额 50.00 USD",
				"兑换码：GV-TEST-0001",
				"赠言：生日快乐！",
			},
		},
		{
			name: "anonymous_without_message",
			input: PurchaseEmailInput{
				CardTitle: "早餐套餐卡",
				QRCode:    "GV-TEST-0002",
				Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("25.00")),
				Currency:  "USD",
			},
			wantSubjectContains: []string{"早餐套餐卡"},
			wantBodyContains: []string{
				"兑换码：GV-TEST-0002",
				"请到店出示兑换码",
			},
			wantBodyExcludes: []string{"您好：", "赠言"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := BuildPurchaseEmail(tt.input)
			for _, expected := range tt.wantSubjectContains {
				if !strings.Contains(subject, expected) {
					t.Fatalf("subject missing %q: %s", expected, subject)
				}
			}
			for _, expected := range tt.wantBodyContains {
				if !strings.Contains(body, expected) {
					t.Fatalf("body missing %q: %s", expected, body)
				}
			}
			for _, unexpected := range tt.wantBodyExcludes {
				if strings.Contains(body, unexpected) {
					t.Fatalf("body should not contain %q: %s", unexpected, body)
				}
			}
		})
	}
}

func TestSendCustomEmailDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	err := svc.SendCustomEmail("user@example.com", "subject", "body")
	if !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}
}

func TestSendCustomEmailEmptyBodySkipped(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := svc.SendCustomEmail("user@example.com", "subject", "   "); err != nil {
		t.Fatalf("empty body should be skipped before send, got %v", err)
	}
}

func TestSendCustomEmailInvalidRecipient(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    465,
		From:    "noreply@example.com",
	})
	err := svc.SendCustomEmail("not-an-email", "subject", "body")
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
