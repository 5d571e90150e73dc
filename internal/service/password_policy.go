package service

import (
	"fmt"
	"unicode"

	"github.com/giftvault/internal/config"
)

// passwordPolicyError 描述具体不满足的密码规则，errors.Is 归一为 ErrWeakPassword。
type passwordPolicyError struct {
	reason string
}

func (e passwordPolicyError) Error() string {
	return e.reason
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{reason: fmt.Sprintf("密码长度不能少于 %d 位", policy.MinLength)}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case policy.RequireUpper && !hasUpper:
		return passwordPolicyError{reason: "密码必须包含大写字母"}
	case policy.RequireLower && !hasLower:
		return passwordPolicyError{reason: "密码必须包含小写字母"}
	case policy.RequireNumber && !hasNumber:
		return passwordPolicyError{reason: "密码必须包含数字"}
	case policy.RequireSpecial && !hasSpecial:
		return passwordPolicyError{reason: "密码必须包含特殊字符"}
	}
	return nil
}
