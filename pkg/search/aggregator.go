package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// aggregator.go - 分页聚合器
// 按计划驱动源端适配器翻页到底，合并多路抓取并按记录标识去重
// 不做任何匹配与安全过滤，只产出完整的候选集

// DefaultMaxRecords 单次聚合的记录上限
// 到达上限不是错误，结果集被截断并在信封中上报
const DefaultMaxRecords = 1000

// RecordSource 源端适配器契约：给定过滤参数与续页游标取回一页
type RecordSource interface {
	ListMeetings(ctx context.Context, filters fathom.ListFilters, cursor string) (*fathom.Page, error)
}

// Aggregator 分页聚合器
type Aggregator struct {
	Source RecordSource
	// MaxRecords 记录上限，零值时使用 DefaultMaxRecords
	MaxRecords int
}

// Collect 执行计划的抓取部分
// 返回:
//   - []fathom.Meeting: 去重后的候选集（单路抓取内保持源顺序）
//   - bool: 是否因到达记录上限被截断
//   - error: 源端错误原样上抛，不重试
func (a *Aggregator) Collect(ctx context.Context, plan *Plan) ([]fathom.Meeting, bool, error) {
	maxRecords := a.MaxRecords
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	// 多个参会人邮箱时每个邮箱一次穷尽抓取
	// （源端过滤对多值邮箱语义不可靠，合并去重由本层完成）
	if len(plan.InviteeEmails) > 1 {
		return a.collectPerEmail(ctx, plan, maxRecords)
	}

	filters := plan.Filters.Clone()
	if len(plan.InviteeEmails) == 1 {
		filters.CalendarInvitees = []string{plan.InviteeEmails[0]}
	}

	records, truncated, err := a.drain(ctx, filters, plan.Exhaustive, maxRecords)
	if err != nil {
		return nil, false, err
	}
	deduped, capped := dedupeByID(records, maxRecords)
	return filterByInviteeEmails(deduped, plan.InviteeEmails), truncated || capped, nil
}

// collectPerEmail 每个邮箱独立跑一次穷尽抓取，按计划中的邮箱顺序确定性合并
// 各路抓取只读且过滤集互不相交，可以并发执行
func (a *Aggregator) collectPerEmail(ctx context.Context, plan *Plan, maxRecords int) ([]fathom.Meeting, bool, error) {
	results := make([][]fathom.Meeting, len(plan.InviteeEmails))
	truncations := make([]bool, len(plan.InviteeEmails))

	g, gctx := errgroup.WithContext(ctx)
	for i, email := range plan.InviteeEmails {
		i, email := i, email
		g.Go(func() error {
			filters := plan.Filters.Clone()
			filters.CalendarInvitees = []string{email}
			records, truncated, err := a.drain(gctx, filters, true, maxRecords)
			if err != nil {
				return fmt.Errorf("fetch for %s: %w", email, err)
			}
			results[i] = records
			truncations[i] = truncated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	var merged []fathom.Meeting
	anyTruncated := false
	for i, records := range results {
		merged = append(merged, records...)
		anyTruncated = anyTruncated || truncations[i]
	}
	deduped, capped := dedupeByID(merged, maxRecords)
	return filterByInviteeEmails(deduped, plan.InviteeEmails), anyTruncated || capped, nil
}

// filterByInviteeEmails 客户端精确邮箱过滤
// 源端的参会人过滤是域粒度的，完整邮箱的相等性检查在这里兜底：
// 任一参会人邮箱与任一目标邮箱相等（大小写不敏感）才存活
func filterByInviteeEmails(records []fathom.Meeting, emails []string) []fathom.Meeting {
	if len(emails) == 0 {
		return records
	}
	out := make([]fathom.Meeting, 0, len(records))
	for i := range records {
		if hasInviteeEmail(&records[i], emails) {
			out = append(out, records[i])
		}
	}
	return out
}

// hasInviteeEmail 判定记录的参会人中是否存在目标邮箱
// 计划中的邮箱已统一为小写
func hasInviteeEmail(m *fathom.Meeting, emails []string) bool {
	for _, inv := range m.CalendarInvitees {
		lower := strings.ToLower(inv.Email)
		for _, email := range emails {
			if lower == email {
				return true
			}
		}
	}
	return false
}

// drain 对一组过滤参数翻页抓取
// exhaustive 为 false 时只取首页；否则跟随续页游标直到没有下一页或到达上限
func (a *Aggregator) drain(ctx context.Context, filters fathom.ListFilters, exhaustive bool, maxRecords int) ([]fathom.Meeting, bool, error) {
	var records []fathom.Meeting
	cursor := ""

	for {
		page, err := a.Source.ListMeetings(ctx, filters, cursor)
		if err != nil {
			return nil, false, err
		}
		records = append(records, page.Items...)

		// 上限保证翻页循环必然终止
		if len(records) >= maxRecords {
			return records[:maxRecords], true, nil
		}
		if !exhaustive || page.NextCursor == "" {
			return records, false, nil
		}
		cursor = page.NextCursor
	}
}

// dedupeByID 按记录标识去重，首次出现者保留
// 两个标识字段都缺失的记录无法去重也无法被引用，按设计直接丢弃
// 第二个返回值表示去重后仍超出上限被截断
func dedupeByID(records []fathom.Meeting, maxRecords int) ([]fathom.Meeting, bool) {
	seen := make(map[string]bool, len(records))
	out := make([]fathom.Meeting, 0, len(records))
	for _, m := range records {
		id := m.ID()
		if id == "" || seen[id] {
			continue
		}
		if len(out) >= maxRecords {
			return out, true
		}
		seen[id] = true
		out = append(out, m)
	}
	return out, false
}
