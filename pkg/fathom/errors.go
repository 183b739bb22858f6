package fathom

import (
	"errors"
	"fmt"
)

// errors.go - 源端错误分类
// 管道层不做重试，错误原样上抛由调用方决定策略

var (
	// ErrSourceAuth 源端拒绝认证（HTTP 401）
	ErrSourceAuth = errors.New("source authentication rejected")
	// ErrSourceRateLimited 源端限流（HTTP 429）
	ErrSourceRateLimited = errors.New("source rate limited")
	// ErrSourceUnavailable 网络错误或源端 5xx
	ErrSourceUnavailable = errors.New("source unavailable")
)

// APIError 携带 HTTP 状态码与响应体片段的源端错误
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("source API error %d: %s", e.StatusCode, e.Body)
}

// Unwrap 将状态码映射到错误类别，支持 errors.Is 判断
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 401:
		return ErrSourceAuth
	case e.StatusCode == 429:
		return ErrSourceRateLimited
	case e.StatusCode >= 500:
		return ErrSourceUnavailable
	default:
		return nil
	}
}

// ErrorCode 返回错误的机器可读代码，用于出站错误信封与审计
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrSourceAuth):
		return "source_auth_error"
	case errors.Is(err, ErrSourceRateLimited):
		return "source_rate_limited"
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	default:
		return "internal_error"
	}
}
