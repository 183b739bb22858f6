package search

import (
	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// matcher.go - 匹配引擎
// 用残余匹配词对安全过滤后的候选集做成员判定
// 逐字段独立匹配，任一字段命中即入选；不计算相关性得分，保持源顺序

// Matcher 匹配引擎
// 使用大小写折叠的子串搜索（language.Und，不绑定具体语言规则）
type Matcher struct {
	matcher *textsearch.Matcher
}

// NewMatcher 创建匹配引擎实例
func NewMatcher() *Matcher {
	return &Matcher{
		matcher: textsearch.New(language.Und, textsearch.IgnoreCase),
	}
}

// Filter 返回命中残余匹配词的记录（保持输入顺序）
// term 为空时全部通过：请求是纯过滤式检索
func (m *Matcher) Filter(records []fathom.Meeting, term string) []fathom.Meeting {
	if term == "" {
		return records
	}
	out := make([]fathom.Meeting, 0, len(records))
	for _, rec := range records {
		if m.Matches(&rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches 判定单条记录是否命中
// 可搜索字段: 标题、备用标题、摘要、行动项描述、参会人姓名/邮箱，
// 以及（仅在转写内容被抓取时）转写条目文本
func (m *Matcher) Matches(rec *fathom.Meeting, term string) bool {
	if m.contains(rec.Title, term) || m.contains(rec.MeetingTitle, term) {
		return true
	}
	if rec.DefaultSummary != nil && m.contains(rec.DefaultSummary.MarkdownFormatted, term) {
		return true
	}
	for _, item := range rec.ActionItems {
		if m.contains(item.Description, term) {
			return true
		}
	}
	for _, inv := range rec.CalendarInvitees {
		if m.contains(inv.Name, term) || m.contains(inv.Email, term) {
			return true
		}
	}
	for _, entry := range rec.Transcript {
		if m.contains(entry.Text, term) {
			return true
		}
	}
	return false
}

// contains 大小写不敏感的子串判定
func (m *Matcher) contains(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	start, _ := m.matcher.IndexString(haystack, needle)
	return start >= 0
}
