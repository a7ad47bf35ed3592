package response

import "fmt"

// AppError 携带业务状态码与消息键的错误
type AppError struct {
	Code    int
	Key     string // 消息表中的文案键
	Message string
	Err     error
}

// WrapError 包装底层错误
func WrapError(code int, key, message string, err error) *AppError {
	return &AppError{Code: code, Key: key, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }
