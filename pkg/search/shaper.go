package search

import (
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// shaper.go - 结果整形器
// 应用 first-N / last-N 语义与字段选择策略，产出出站信封

// ShapedMeeting 出站信封中的单条会议记录
// summary / action_items / transcript 仅在请求对应开关时出现
type ShapedMeeting struct {
	Title       string                   `json:"title"`
	Date        time.Time                `json:"date"`
	URL         string                   `json:"url"`
	Team        string                   `json:"team"`
	RecordedBy  fathom.RecordedBy        `json:"recorded_by"`
	Invitees    []fathom.Invitee         `json:"invitees"`
	Summary     string                   `json:"summary,omitempty"`
	ActionItems []fathom.ActionItem      `json:"action_items,omitempty"`
	Transcript  []fathom.TranscriptEntry `json:"transcript,omitempty"`
}

// Result 搜索响应信封
type Result struct {
	SearchTerm     string          `json:"search_term"`
	TotalFound     int             `json:"total_found"`
	Showing        int             `json:"showing"`
	HasMore        bool            `json:"has_more"`
	Truncated      bool            `json:"truncated"`
	FiltersApplied FiltersApplied  `json:"filters_applied"`
	Meetings       []ShapedMeeting `json:"meetings"`
}

// Shaper 结果整形器
type Shaper struct {
	// SourceDescending 源端按最新在前交付时置 true，last-N 语义需要相应反转
	// 集成时与实际源端核对后配置，默认假定按时间升序交付
	SourceDescending bool
}

// Shape 对匹配集应用条数与字段选择策略
// 参数:
//   - searchTerm: 原始搜索词（回显）
//   - plan: 查询计划
//   - matches: 匹配集（源顺序）
//   - truncated: 聚合阶段是否到达记录上限
func (s *Shaper) Shape(searchTerm string, plan *Plan, matches []fathom.Meeting, truncated bool) *Result {
	ordered := matches
	if s.SourceDescending {
		// 统一为时间升序，使 last-N 始终表示"最近的 N 条"
		ordered = make([]fathom.Meeting, len(matches))
		for i, m := range matches {
			ordered[len(matches)-1-i] = m
		}
	}

	total := len(ordered)
	count := plan.Count
	if count > total {
		count = total
	}

	var window []fathom.Meeting
	switch plan.Ordering {
	case OrderLastN:
		window = ordered[total-count:]
	default:
		window = ordered[:count]
	}

	shaped := make([]ShapedMeeting, 0, len(window))
	for i := range window {
		shaped = append(shaped, s.shapeOne(&window[i], plan))
	}

	excludeTeams := plan.ExcludeTeams
	if excludeTeams == nil {
		excludeTeams = []string{}
	}

	return &Result{
		SearchTerm: searchTerm,
		TotalFound: total,
		Showing:    len(shaped),
		HasMore:    total > len(shaped),
		Truncated:  truncated,
		FiltersApplied: FiltersApplied{
			ExcludeTeams:       excludeTeams,
			DaysBack:           plan.DaysBack,
			IncludeSummary:     plan.Filters.IncludeSummary,
			IncludeActionItems: plan.Filters.IncludeActionItems,
			IncludeTranscript:  plan.Filters.IncludeTranscript,
		},
		Meetings: shaped,
	}
}

// shapeOne 整形单条记录，按计划开关裁剪可选字段
func (s *Shaper) shapeOne(m *fathom.Meeting, plan *Plan) ShapedMeeting {
	title := m.Title
	if title == "" {
		title = m.MeetingTitle
	}
	out := ShapedMeeting{
		Title:      title,
		Date:       m.EffectiveDate(),
		URL:        m.CanonicalURL(),
		Team:       m.OwningTeam(),
		RecordedBy: m.RecordedBy,
		Invitees:   m.CalendarInvitees,
	}
	if plan.Filters.IncludeSummary && m.DefaultSummary != nil {
		out.Summary = m.DefaultSummary.MarkdownFormatted
	}
	if plan.Filters.IncludeActionItems {
		out.ActionItems = m.ActionItems
	}
	if plan.Filters.IncludeTranscript {
		out.Transcript = m.Transcript
	}
	return out
}
