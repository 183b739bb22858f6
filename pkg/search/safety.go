package search

import (
	"strings"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// safety.go - 安全过滤器
// 固定排除集不可覆盖：敏感团队的记录与无归属团队的私人录制一律剔除
// 调用方提供的排除项只增不减
// 本过滤无条件运行于每个候选集之上，与是否提供搜索词无关

// fixedExclusions 固定排除的团队（大小写不敏感的子串匹配）
var fixedExclusions = []string{"executive", "personal", "no team"}

// SafetyFilter 安全过滤器
type SafetyFilter struct{}

// Apply 过滤候选集
// 参数:
//   - records: 聚合后的候选集
//   - extraExclusions: 调用方附加的排除团队
//
// 返回: 存活记录（保持输入顺序）
func (f *SafetyFilter) Apply(records []fathom.Meeting, extraExclusions []string) []fathom.Meeting {
	exclusions := make([]string, 0, len(fixedExclusions)+len(extraExclusions))
	exclusions = append(exclusions, fixedExclusions...)
	for _, e := range extraExclusions {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			exclusions = append(exclusions, strings.ToLower(trimmed))
		}
	}

	out := make([]fathom.Meeting, 0, len(records))
	for _, m := range records {
		if f.allowed(m, exclusions) {
			out = append(out, m)
		}
	}
	return out
}

// allowed 判断单条记录是否存活
func (f *SafetyFilter) allowed(m fathom.Meeting, exclusions []string) bool {
	team := strings.TrimSpace(m.OwningTeam())
	// 无归属团队 = 私人录制，一律剔除
	if team == "" {
		return false
	}
	lower := strings.ToLower(team)
	for _, excl := range exclusions {
		if strings.Contains(lower, excl) {
			return false
		}
	}
	return true
}
