package generator

import (
	"errors"
	"fmt"
)

// 阶段边界对外暴露的错误类别。用 %w 包装，用 errors.Is 判断。
var (
	ErrConfiguration = errors.New("generation provider is not configured")
	ErrProvider      = errors.New("generation provider failed")
	ErrParse         = errors.New("could not parse structured response")
	ErrValidation    = errors.New("invalid input")
	ErrFetch         = errors.New("could not fetch article")
)

// ParseError 保留模型原始输出，便于排查。
type ParseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrParse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrParse, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
