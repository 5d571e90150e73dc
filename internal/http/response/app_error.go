package response

// AppError 业务错误，携带期望返回给客户端的 HTTP 状态码。
// 处于错误链中时 RespondError 会沿用其状态码与消息。
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 将底层错误包装为带状态码的业务错误。
func WrapError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}
