package search

import (
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// plan.go - 查询计划类型定义
// Plan 由单次搜索请求构造，供聚合器与匹配器消费，请求结束即丢弃

// OrderingMode 结果排序语义
type OrderingMode string

const (
	// OrderFirstN 取源顺序中最前的 N 条匹配
	OrderFirstN OrderingMode = "first_n"
	// OrderLastN 取源顺序中最后的 N 条匹配（即最近的 N 条）
	OrderLastN OrderingMode = "last_n"
)

const (
	// DefaultDaysBack 未提供时间条件时的默认回看窗口（天）
	DefaultDaysBack = 180
	// MaxDaysBack 回看窗口上限（天）
	MaxDaysBack = 365
	// DefaultLimit 默认返回条数
	DefaultLimit = 50
	// MaxLimit 返回条数上限
	MaxLimit = 100
)

// Request 一次搜索请求的入参
// SearchTerm 必填，其余字段均可选
type Request struct {
	SearchTerm string
	// CalendarInvitees 显式参会人邮箱
	CalendarInvitees []string
	// InviteeDomains 显式参会人邮箱域
	InviteeDomains []string
	// RecordedBy 显式录制者邮箱
	RecordedBy []string
	// ExcludeTeams 调用方附加的排除团队（只增不减，固定排除集不可覆盖）
	ExcludeTeams []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	// DaysBack 回看天数，CreatedAfter 显式给出时被忽略
	DaysBack int
	// Limit 期望返回条数，默认 50，上限 100
	Limit              int
	IncludeSummary     bool
	IncludeActionItems bool
	IncludeTranscript  bool
}

// Plan 查询计划：下推过滤参数 + 客户端残余匹配词 + 分页策略
type Plan struct {
	// Filters 下推到源端的过滤参数（不含参会人邮箱，见 InviteeEmails）
	Filters fathom.ListFilters
	// InviteeEmails 参会人邮箱过滤；超过一个时每个邮箱单独跑一次穷尽抓取
	// （源端过滤是域粒度的，多值语义不可靠，精确匹配留给客户端）
	InviteeEmails []string
	// Residual 残余自由文本，为空则跳过客户端文本匹配
	Residual string
	// Ordering 排序语义
	Ordering OrderingMode
	// Count 期望返回条数
	Count int
	// Exhaustive true 时翻页到底，false 时只取首页
	Exhaustive bool
	// ExcludeTeams 调用方附加排除项，固定排除集由 SafetyFilter 持有
	ExcludeTeams []string
	// DaysBack 实际生效的回看窗口，显式 created_after 时为 0
	DaysBack int
}

// FiltersApplied 出站信封中回显的实际生效过滤集，供调用方审计
type FiltersApplied struct {
	ExcludeTeams       []string `json:"exclude_teams"`
	DaysBack           int      `json:"days_back"`
	IncludeSummary     bool     `json:"include_summary"`
	IncludeActionItems bool     `json:"include_action_items"`
	IncludeTranscript  bool     `json:"include_transcript"`
}
