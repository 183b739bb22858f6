package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/search"
)

// tool.go - 工具接口与参数提取辅助函数

// Tool 工具接口，所有工具必须实现此接口
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}, requestID string, svc *search.Service) (string, error)
}

// SafeGetString 从参数 map 中安全获取字符串值
func SafeGetString(args map[string]interface{}, key string) (string, error) {
	val, exists := args[key]
	if !exists {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	if val == nil {
		return "", fmt.Errorf("parameter %s is nil", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string, got %T", key, val)
	}

	if str == "" {
		return "", fmt.Errorf("parameter %s cannot be empty", key)
	}

	return str, nil
}

// OptionalString 获取可选字符串参数，缺失或空值时返回默认值
func OptionalString(args map[string]interface{}, key, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// OptionalInt 获取可选整数参数，缺失时返回默认值
// 注意: JSON数字通常解析为float64，此函数会自动转换
func OptionalInt(args map[string]interface{}, key string, defaultValue int) int {
	val, exists := args[key]
	if !exists || val == nil {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return defaultValue
	}
}

// OptionalBool 获取可选布尔参数，缺失时返回默认值
func OptionalBool(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// OptionalStringList 获取可选字符串数组参数
// 兼容两种形态: JSON 数组和单个字符串
func OptionalStringList(args map[string]interface{}, key string) []string {
	val, exists := args[key]
	if !exists || val == nil {
		return nil
	}
	switch v := val.(type) {
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// OptionalTime 获取可选时间参数（RFC3339 或 YYYY-MM-DD）
// 返回:
//   - *time.Time: 解析出的时间，缺失时为 nil
//   - error: 提供了值但无法解析时返回错误
func OptionalTime(args map[string]interface{}, key string) (*time.Time, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("parameter %s must be an ISO-8601 timestamp or YYYY-MM-DD date, got %q", key, raw)
}
