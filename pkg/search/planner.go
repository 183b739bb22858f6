package search

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// planner.go - 查询规划器
// 把自由文本搜索词 + 结构化提示解释为一个 Plan：
// 能下推给源端的条件下推，下推不了的（人名、普通关键词）留给客户端匹配
// 启发式规则按优先级组成一条纯函数链，每条规则独立可测

// ErrInvalidRequest 缺少必填搜索词
var ErrInvalidRequest = errors.New("search_term is required")

var (
	agentDirectiveRe = regexp.MustCompile(`@agent\(\s*"([^"]*)"\s*\)`)
	emailRe          = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	domainTokenRe    = regexp.MustCompile(`^(?:[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,}$`)
	lastNRe          = regexp.MustCompile(`(?i)\blast\s+(\d{1,4})\b`)
)

// termState 规则链的不可变中间状态
// 每条规则接收一份状态并返回新状态，不修改共享变量
type termState struct {
	// text 尚未被消费的文本
	text string
	// emails 提取出的参会人邮箱
	emails []string
	// domains 提取出的邮箱域过滤
	domains []string
	// teams 提取出的团队过滤
	teams []string
}

// planRule 一条提取规则：纯函数，按顺序应用
type planRule func(termState) termState

// termRules 按优先级排列的规则链（每个 token 先到先得）
var termRules = []planRule{
	ruleAgentDirective,
	ruleEmbeddedEmails,
	ruleBareDomainTokens,
	ruleWholeTermDomain,
	ruleTeamTerm,
}

// ruleAgentDirective 提取 @agent("X") 指令
// X 含 @ 时按参会人邮箱处理，否则按域处理
func ruleAgentDirective(s termState) termState {
	matches := agentDirectiveRe.FindAllStringSubmatch(s.text, -1)
	if len(matches) == 0 {
		return s
	}
	for _, m := range matches {
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		if strings.Contains(value, "@") {
			s.emails = append(s.emails, strings.ToLower(value))
		} else {
			s.domains = append(s.domains, strings.ToLower(value))
		}
	}
	s.text = agentDirectiveRe.ReplaceAllString(s.text, " ")
	return s
}

// ruleEmbeddedEmails 提取文本中的 RFC 形邮箱地址
// 邮箱本身成为参会人过滤，其域成为下推的域过滤
// （源端只按域过滤，完整邮箱相等性检查保留在客户端匹配阶段）
func ruleEmbeddedEmails(s termState) termState {
	found := emailRe.FindAllString(s.text, -1)
	if len(found) == 0 {
		return s
	}
	for _, email := range found {
		s.emails = append(s.emails, strings.ToLower(email))
		s.domains = append(s.domains, emailDomain(email))
	}
	s.text = emailRe.ReplaceAllString(s.text, " ")
	return s
}

// ruleBareDomainTokens 提取形如 word.tld 的裸域 token（无 @、无内部空格）
func ruleBareDomainTokens(s termState) termState {
	var remaining []string
	for _, token := range strings.Fields(s.text) {
		trimmed := strings.Trim(token, ".,;:!?")
		if !strings.Contains(trimmed, "@") && domainTokenRe.MatchString(trimmed) {
			s.domains = append(s.domains, strings.ToLower(trimmed))
			continue
		}
		remaining = append(remaining, token)
	}
	s.text = strings.Join(remaining, " ")
	return s
}

// ruleWholeTermDomain 剩余文本是单个含 . 的 token（无 @、无空格）时整体按域处理
func ruleWholeTermDomain(s termState) termState {
	cleaned := normalizeSpace(s.text)
	if cleaned == "" || strings.Contains(cleaned, " ") {
		return s
	}
	if strings.Contains(cleaned, ".") && !strings.Contains(cleaned, "@") {
		s.domains = append(s.domains, strings.ToLower(cleaned))
		s.text = ""
	}
	return s
}

// ruleTeamTerm 剩余文本包含 team/department/group 字样时整体按团队过滤下推
func ruleTeamTerm(s termState) termState {
	cleaned := normalizeSpace(s.text)
	if cleaned == "" {
		return s
	}
	lower := strings.ToLower(cleaned)
	for _, marker := range []string{"team", "department", "group"} {
		if strings.Contains(lower, marker) {
			s.teams = append(s.teams, cleaned)
			s.text = ""
			return s
		}
	}
	return s
}

// Planner 查询规划器
type Planner struct {
	// Now 注入的时钟，零值时使用 time.Now
	Now func() time.Time
}

// BuildPlan 把一次搜索请求解释为查询计划
// 规则（按优先级，先到先得）:
//  1. @agent("X") 指令
//  2. 内嵌邮箱地址（邮箱 + 其域）
//  3. 裸域 token
//  4. 整词域
//  5. 团队字样整词下推
//  6. 两个以上单词按人名处理：不下推，仅客户端匹配
//  7. 剩余文本归一化后作为残余匹配词
func (p *Planner) BuildPlan(req Request) (*Plan, error) {
	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		return nil, ErrInvalidRequest
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	// 1. 排序语义检测："last N" 强制穷尽翻页
	// （不看全所有匹配无法知道哪些是"最后"的）
	ordering := OrderFirstN
	count := 0
	if m := lastNRe.FindStringSubmatch(term); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			ordering = OrderLastN
			count = n
			term = normalizeSpace(lastNRe.ReplaceAllString(term, " "))
		}
	}

	// 2. 启发式规则链提取下推条件
	state := termState{text: term}
	for _, rule := range termRules {
		state = rule(state)
	}
	residual := normalizeSpace(state.text)

	// 3. 合并结构化提示与提取结果
	emails := dedupeLower(append(append([]string{}, req.CalendarInvitees...), state.emails...))
	domains := dedupeLower(append(append([]string{}, req.InviteeDomains...), state.domains...))
	owners := dedupeLower(req.RecordedBy)

	// 4. 时间窗口：显式 created_after 覆盖 days_back；都缺省时回看 180 天
	var createdAfter *time.Time
	daysBack := 0
	if req.CreatedAfter != nil {
		createdAfter = req.CreatedAfter
	} else {
		daysBack = req.DaysBack
		if daysBack <= 0 {
			daysBack = DefaultDaysBack
		}
		if daysBack > MaxDaysBack {
			daysBack = MaxDaysBack
		}
		after := now().AddDate(0, 0, -daysBack)
		createdAfter = &after
	}

	// 5. 返回条数
	if ordering == OrderFirstN {
		count = req.Limit
		if count <= 0 {
			count = DefaultLimit
		}
	}
	if count > MaxLimit {
		count = MaxLimit
	}

	// 6. 分页策略：last-N 或任一窄化过滤存在时穷尽翻页，否则只取首页
	exhaustive := ordering == OrderLastN ||
		len(emails) > 0 || len(domains) > 0 || len(owners) > 0 || len(state.teams) > 0

	plan := &Plan{
		Filters: fathom.ListFilters{
			CreatedAfter:       createdAfter,
			CreatedBefore:      req.CreatedBefore,
			InviteeDomains:     domains,
			RecordedBy:         owners,
			Teams:              state.teams,
			IncludeSummary:     req.IncludeSummary,
			IncludeActionItems: req.IncludeActionItems,
			IncludeTranscript:  req.IncludeTranscript,
		},
		InviteeEmails: emails,
		Residual:      residual,
		Ordering:      ordering,
		Count:         count,
		Exhaustive:    exhaustive,
		ExcludeTeams:  append([]string(nil), req.ExcludeTeams...),
		DaysBack:      daysBack,
	}
	return plan, nil
}

// emailDomain 返回邮箱 @ 之后的域部分（小写）
func emailDomain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 || idx == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[idx+1:])
}

// normalizeSpace 折叠空白并去除首尾空格
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupeLower 小写化并保序去重
func dedupeLower(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		lower := strings.ToLower(strings.TrimSpace(v))
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	return out
}
