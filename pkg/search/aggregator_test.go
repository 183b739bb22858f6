package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

// fakeSource 按参会人邮箱键控的分页假源，记录每次调用的过滤参数
type fakeSource struct {
	mu    sync.Mutex
	calls []fathom.ListFilters
	// pages 按邮箱键（无邮箱时为 ""）划分的页序列
	pages map[string][]fathom.Page
	err   error
}

func (s *fakeSource) ListMeetings(ctx context.Context, filters fathom.ListFilters, cursor string) (*fathom.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, filters.Clone())

	key := ""
	if len(filters.CalendarInvitees) > 0 {
		key = filters.CalendarInvitees[0]
	}
	seq := s.pages[key]

	idx := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "p%d", &idx)
	}
	if idx >= len(seq) {
		return &fathom.Page{}, nil
	}
	page := seq[idx]
	return &page, nil
}

func meeting(id string) fathom.Meeting {
	return fathom.Meeting{Title: id, URL: "https://fathom.video/calls/" + id, Team: "Engineering"}
}

func meetingWith(id string, inviteeEmails ...string) fathom.Meeting {
	m := meeting(id)
	for _, email := range inviteeEmails {
		m.CalendarInvitees = append(m.CalendarInvitees, fathom.Invitee{Email: email})
	}
	return m
}

func pageOf(next string, ids ...string) fathom.Page {
	p := fathom.Page{NextCursor: next}
	for _, id := range ids {
		p.Items = append(p.Items, meeting(id))
	}
	return p
}

func TestAggregator_SinglePageWhenNotExhaustive(t *testing.T) {
	src := &fakeSource{pages: map[string][]fathom.Page{
		"": {pageOf("p1", "a", "b"), pageOf("", "c")},
	}}
	agg := &Aggregator{Source: src}

	records, truncated, err := agg.Collect(context.Background(), &Plan{Exhaustive: false})
	require.NoError(t, err)

	// 非穷尽模式只取首页，不跟随游标
	assert.Len(t, records, 2)
	assert.False(t, truncated)
	assert.Len(t, src.calls, 1)
}

func TestAggregator_DrainsAllPages(t *testing.T) {
	src := &fakeSource{pages: map[string][]fathom.Page{
		"": {pageOf("p1", "a", "b"), pageOf("p2", "c"), pageOf("", "d")},
	}}
	agg := &Aggregator{Source: src}

	records, truncated, err := agg.Collect(context.Background(), &Plan{Exhaustive: true})
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, "a", records[0].Title)
	assert.Equal(t, "d", records[3].Title)
	assert.False(t, truncated)
	assert.Len(t, src.calls, 3)
}

func TestAggregator_RecordCapTerminatesEndlessCursor(t *testing.T) {
	// 源端游标永不为空：上限必须保证循环终止
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}
	endless := pageOf("p0", ids...)
	src := &fakeSource{pages: map[string][]fathom.Page{
		"": {endless},
	}}
	agg := &Aggregator{Source: src, MaxRecords: 25}

	records, truncated, err := agg.Collect(context.Background(), &Plan{Exhaustive: true})
	require.NoError(t, err)

	// 每页返回相同的 10 条，去重后只剩 10 条，但抓取层在 25 条处截断
	assert.True(t, truncated)
	assert.LessOrEqual(t, len(records), 25)
	assert.Len(t, src.calls, 3)
}

func TestAggregator_SingleEmailPushedDown(t *testing.T) {
	src := &fakeSource{pages: map[string][]fathom.Page{
		"bob@corp.io": {{Items: []fathom.Meeting{meetingWith("a", "bob@corp.io")}}},
	}}
	agg := &Aggregator{Source: src}

	plan := &Plan{InviteeEmails: []string{"bob@corp.io"}, Exhaustive: true}
	records, _, err := agg.Collect(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, records, 1)
	require.Len(t, src.calls, 1)
	assert.Equal(t, []string{"bob@corp.io"}, src.calls[0].CalendarInvitees)
}

func TestAggregator_ExactInviteeEmailEnforced(t *testing.T) {
	// 源端按域粒度过滤：同域的 bob-only 会议也会混进响应
	// 完整邮箱相等性必须在客户端兜底
	src := &fakeSource{pages: map[string][]fathom.Page{
		"alice@example.com": {{Items: []fathom.Meeting{
			meetingWith("with-alice", "Alice@Example.com", "bob@example.com"),
			meetingWith("bob-only", "bob@example.com"),
		}}},
	}}
	agg := &Aggregator{Source: src}

	plan := &Plan{InviteeEmails: []string{"alice@example.com"}, Exhaustive: true}
	records, _, err := agg.Collect(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "with-alice", records[0].Title)
}

func TestAggregator_MultiEmailFanOut(t *testing.T) {
	src := &fakeSource{pages: map[string][]fathom.Page{
		"a@x.com": {{Items: []fathom.Meeting{
			meetingWith("m1", "a@x.com"),
			meetingWith("m2", "a@x.com", "b@y.org"),
		}}},
		"b@y.org": {{Items: []fathom.Meeting{
			meetingWith("m2", "a@x.com", "b@y.org"),
			meetingWith("m3", "b@y.org"),
		}}},
	}}
	agg := &Aggregator{Source: src}

	plan := &Plan{InviteeEmails: []string{"a@x.com", "b@y.org"}, Exhaustive: true}
	records, truncated, err := agg.Collect(context.Background(), plan)
	require.NoError(t, err)

	// 合并顺序跟随计划中的邮箱顺序，m2 跨路去重只保留首次出现
	require.Len(t, records, 3)
	assert.Equal(t, "m1", records[0].Title)
	assert.Equal(t, "m2", records[1].Title)
	assert.Equal(t, "m3", records[2].Title)
	assert.False(t, truncated)
}

func TestAggregator_MultiEmailErrorPropagates(t *testing.T) {
	src := &fakeSource{err: fathom.ErrSourceUnavailable}
	agg := &Aggregator{Source: src}

	plan := &Plan{InviteeEmails: []string{"a@x.com", "b@y.org"}, Exhaustive: true}
	_, _, err := agg.Collect(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fathom.ErrSourceUnavailable))
}

func TestAggregator_FiltersNotMutated(t *testing.T) {
	src := &fakeSource{pages: map[string][]fathom.Page{
		"a@x.com": {{Items: []fathom.Meeting{meetingWith("m1", "a@x.com")}}},
		"b@y.org": {{Items: []fathom.Meeting{meetingWith("m2", "b@y.org")}}},
	}}
	agg := &Aggregator{Source: src}

	plan := &Plan{
		Filters:       fathom.ListFilters{InviteeDomains: []string{"x.com"}},
		InviteeEmails: []string{"a@x.com", "b@y.org"},
		Exhaustive:    true,
	}
	_, _, err := agg.Collect(context.Background(), plan)
	require.NoError(t, err)

	// 计划中的过滤参数不被各路抓取污染
	assert.Empty(t, plan.Filters.CalendarInvitees)
	assert.Equal(t, []string{"x.com"}, plan.Filters.InviteeDomains)
}
