package fathom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/metrics"
)

// client.go - 会议记录 API 客户端
// 只负责"给定过滤参数和续页游标，取回一页记录"，不做重试、不做业务过滤

const (
	// DefaultBaseURL 默认源端地址
	DefaultBaseURL = "https://api.fathom.ai"
	// listMeetingsPath 列表接口路径
	listMeetingsPath = "/external/v1/meetings"
)

// Client 会议记录 API 客户端
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient 创建 API 客户端实例
// 参数:
//   - baseURL: 源端基础 URL，为空则使用默认值
//   - apiKey: 源端 API Key
//   - timeout: 单次请求超时
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ListMeetings 抓取一页会议记录
// 参数:
//   - ctx: 请求上下文
//   - filters: 下推过滤参数（不会被修改）
//   - cursor: 上一页返回的续页游标，首页传空串
//
// 返回:
//   - *Page: 当前页记录与下一页游标
//   - error: 401/429/5xx 分别映射为 ErrSourceAuth / ErrSourceRateLimited / ErrSourceUnavailable
func (c *Client) ListMeetings(ctx context.Context, filters ListFilters, cursor string) (*Page, error) {
	q := buildQuery(filters, cursor)

	reqURL := c.BaseURL + listMeetingsPath
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.RecordSourceFetch("network_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordSourceFetch("read_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		metrics.RecordSourceFetch(fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start).Seconds())
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}
	metrics.RecordSourceFetch("success", time.Since(start).Seconds())

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse meetings page: %w", err)
	}
	return &page, nil
}

// buildQuery 将过滤参数编码为查询串
// 多值字段使用数组参数（key[]=v），时间使用 RFC3339
func buildQuery(filters ListFilters, cursor string) url.Values {
	q := url.Values{}

	if filters.CreatedAfter != nil {
		q.Set("created_after", filters.CreatedAfter.UTC().Format(time.RFC3339))
	}
	if filters.CreatedBefore != nil {
		q.Set("created_before", filters.CreatedBefore.UTC().Format(time.RFC3339))
	}
	for _, email := range filters.CalendarInvitees {
		q.Add("calendar_invitees[]", email)
	}
	for _, domain := range filters.InviteeDomains {
		q.Add("calendar_invitees_domains[]", domain)
	}
	for _, email := range filters.RecordedBy {
		q.Add("recorded_by[]", email)
	}
	for _, team := range filters.Teams {
		q.Add("teams[]", team)
	}
	if filters.IncludeSummary {
		q.Set("include_summary", "true")
	}
	if filters.IncludeActionItems {
		q.Set("include_action_items", "true")
	}
	if filters.IncludeTranscript {
		q.Set("include_transcript", "true")
	}
	if filters.IncludeCRMMatches {
		q.Set("include_crm_matches", "true")
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return q
}

// truncateBody 截断过长的响应体，避免错误信息过大
func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
