package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meetingtools/fathom-search-mcp/pkg/search"
)

// SearchMeetingsTool 会议搜索工具
// 把一条自由文本搜索请求交给搜索管道：规划 → 分页聚合 → 安全过滤 → 匹配 → 整形
type SearchMeetingsTool struct{}

// Name 返回工具名称
func (t *SearchMeetingsTool) Name() string {
	return "search_meetings"
}

// Description 返回工具描述
func (t *SearchMeetingsTool) Description() string {
	return "搜索会议记录。支持自由文本（人名、关键词、邮箱、域名、团队）与结构化过滤（参会人、录制者、时间窗口），" +
		"可按需附带摘要、行动项和转写内容。固定的敏感团队排除始终生效。"
}

// InputSchema 返回输入参数的JSON Schema
func (t *SearchMeetingsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"search_term": map[string]interface{}{
				"type":        "string",
				"description": "自由文本搜索词。支持 @agent(\"X\") 指令、邮箱地址、域名、团队字样、人名和 \"last N\" 语义",
			},
			"calendar_invitees": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "显式参会人邮箱列表",
			},
			"calendar_invitees_domains": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "显式参会人邮箱域列表",
			},
			"recorded_by": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "录制者邮箱列表",
			},
			"exclude_teams": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "附加排除的团队名（只增不减，固定排除集不可覆盖）",
			},
			"created_after": map[string]interface{}{
				"type":        "string",
				"description": "创建时间下界（ISO 8601，显式给出时覆盖 days_back）",
			},
			"created_before": map[string]interface{}{
				"type":        "string",
				"description": "创建时间上界（ISO 8601，可独立提供）",
			},
			"days_back": map[string]interface{}{
				"type":        "integer",
				"description": "回看天数（默认180，上限365）",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "返回条数（默认50，上限100）",
			},
			"include_summary": map[string]interface{}{
				"type":        "boolean",
				"description": "附带会议摘要",
			},
			"include_action_items": map[string]interface{}{
				"type":        "boolean",
				"description": "附带行动项",
			},
			"include_transcript": map[string]interface{}{
				"type":        "boolean",
				"description": "附带转写内容（同时使转写文本参与匹配）",
			},
		},
		"required": []string{"search_term"},
	}
}

// Execute 执行工具，运行完整搜索管道并返回 JSON 格式的结果信封
func (t *SearchMeetingsTool) Execute(
	ctx context.Context,
	args map[string]interface{},
	requestID string,
	svc *search.Service,
) (string, error) {
	// 1. 提取必填搜索词
	term, err := SafeGetString(args, "search_term")
	if err != nil {
		return "", fmt.Errorf("search_meetings: %w", search.ErrInvalidRequest)
	}

	// 2. 提取可选时间参数
	createdAfter, err := OptionalTime(args, "created_after")
	if err != nil {
		return "", fmt.Errorf("search_meetings: %v: %w", err, search.ErrInvalidRequest)
	}
	createdBefore, err := OptionalTime(args, "created_before")
	if err != nil {
		return "", fmt.Errorf("search_meetings: %v: %w", err, search.ErrInvalidRequest)
	}

	// 3. 组装搜索请求
	req := search.Request{
		SearchTerm:         term,
		CalendarInvitees:   OptionalStringList(args, "calendar_invitees"),
		InviteeDomains:     OptionalStringList(args, "calendar_invitees_domains"),
		RecordedBy:         OptionalStringList(args, "recorded_by"),
		ExcludeTeams:       OptionalStringList(args, "exclude_teams"),
		CreatedAfter:       createdAfter,
		CreatedBefore:      createdBefore,
		DaysBack:           OptionalInt(args, "days_back", 0),
		Limit:              OptionalInt(args, "limit", 0),
		IncludeSummary:     OptionalBool(args, "include_summary", false),
		IncludeActionItems: OptionalBool(args, "include_action_items", false),
		IncludeTranscript:  OptionalBool(args, "include_transcript", false),
	}

	// 4. 运行管道
	result, err := svc.Search(ctx, requestID, req)
	if err != nil {
		return "", err
	}

	// 5. 序列化结果信封
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("search_meetings: failed to marshal result: %w", err)
	}
	return string(data), nil
}
