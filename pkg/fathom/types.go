package fathom

import "time"

// types.go - 远端会议记录 API 的数据结构
// 对应 GET /external/v1/meetings 的响应格式

// RecordedBy 录制者（会议归属人）信息
type RecordedBy struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team,omitempty"`
}

// Invitee 日历邀请参会人
type Invitee struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	EmailDomain string `json:"email_domain"`
	IsExternal  bool   `json:"is_external"`
}

// Summary 会议摘要（仅在请求 include_summary 时返回）
type Summary struct {
	TemplateName      string `json:"template_name,omitempty"`
	MarkdownFormatted string `json:"markdown_formatted"`
}

// ActionItem 行动项（仅在请求 include_action_items 时返回）
type ActionItem struct {
	Description string      `json:"description"`
	Completed   bool        `json:"completed"`
	Assignee    *RecordedBy `json:"assignee,omitempty"`
}

// Speaker 转写条目的发言人
type Speaker struct {
	DisplayName         string `json:"display_name"`
	MatchedInviteeEmail string `json:"matched_calendar_invitee_email,omitempty"`
}

// TranscriptEntry 按时间排序的转写条目（仅在请求 include_transcript 时返回）
type TranscriptEntry struct {
	Speaker   Speaker `json:"speaker"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
}

// Meeting 一条会议记录快照
// URL 在多次抓取之间保持稳定，作为去重标识
type Meeting struct {
	Title              string            `json:"title"`
	MeetingTitle       string            `json:"meeting_title,omitempty"`
	URL                string            `json:"url"`
	ShareURL           string            `json:"share_url,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	ScheduledStartTime *time.Time        `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   *time.Time        `json:"scheduled_end_time,omitempty"`
	RecordingStartTime *time.Time        `json:"recording_start_time,omitempty"`
	RecordingEndTime   *time.Time        `json:"recording_end_time,omitempty"`
	Team               string            `json:"team,omitempty"`
	RecordedBy         RecordedBy        `json:"recorded_by"`
	CalendarInvitees   []Invitee         `json:"calendar_invitees"`
	DefaultSummary     *Summary          `json:"default_summary,omitempty"`
	ActionItems        []ActionItem      `json:"action_items,omitempty"`
	Transcript         []TranscriptEntry `json:"transcript,omitempty"`
}

// ID 返回记录的稳定标识（url 缺失时退回 share_url）
func (m *Meeting) ID() string {
	if m.URL != "" {
		return m.URL
	}
	return m.ShareURL
}

// OwningTeam 返回记录的归属团队
// 源端把团队放在记录本身或录制者上，两处都为空表示私人/未归属录制
func (m *Meeting) OwningTeam() string {
	if m.Team != "" {
		return m.Team
	}
	return m.RecordedBy.Team
}

// EffectiveDate 返回用于展示/排序的时间：优先计划开始时间，缺失时用创建时间
func (m *Meeting) EffectiveDate() time.Time {
	if m.ScheduledStartTime != nil {
		return *m.ScheduledStartTime
	}
	return m.CreatedAt
}

// CanonicalURL 返回对外展示的链接：优先 share_url
func (m *Meeting) CanonicalURL() string {
	if m.ShareURL != "" {
		return m.ShareURL
	}
	return m.URL
}

// ListFilters 列表接口的下推过滤参数
// 多值字段在请求中编码为数组参数，时间为 ISO-8601
type ListFilters struct {
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	// CalendarInvitees 参会人邮箱（源端按域粒度过滤，精确匹配仍需客户端完成）
	CalendarInvitees []string
	// InviteeDomains 参会人邮箱域
	InviteeDomains []string
	// RecordedBy 录制者邮箱
	RecordedBy []string
	// Teams 归属团队
	Teams []string

	IncludeSummary     bool
	IncludeActionItems bool
	IncludeTranscript  bool
	IncludeCRMMatches  bool
}

// Clone 返回过滤参数的深拷贝，调用方持有的切片不会被共享
func (f ListFilters) Clone() ListFilters {
	out := f
	out.CalendarInvitees = append([]string(nil), f.CalendarInvitees...)
	out.InviteeDomains = append([]string(nil), f.InviteeDomains...)
	out.RecordedBy = append([]string(nil), f.RecordedBy...)
	out.Teams = append([]string(nil), f.Teams...)
	return out
}

// Page 列表接口的单页响应
// NextCursor 为空表示没有后续页
type Page struct {
	Items      []Meeting `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
