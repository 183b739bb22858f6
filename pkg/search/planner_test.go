package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 固定时钟，避免时间窗口断言依赖真实时间
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestPlanner() *Planner {
	return &Planner{Now: func() time.Time { return testNow }}
}

func TestBuildPlan_EmptyTermRejected(t *testing.T) {
	p := newTestPlanner()

	_, err := p.BuildPlan(Request{SearchTerm: "   "})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = p.BuildPlan(Request{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBuildPlan_EmbeddedEmail(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "find calls with andrei@pragmatic.dev"})
	require.NoError(t, err)

	assert.Equal(t, []string{"andrei@pragmatic.dev"}, plan.InviteeEmails)
	assert.Equal(t, []string{"pragmatic.dev"}, plan.Filters.InviteeDomains)
	// 邮箱被剥离后剩余词保留为残余匹配词
	assert.Equal(t, "find calls with", plan.Residual)
	assert.True(t, plan.Exhaustive)
}

func TestBuildPlan_MultipleEmails(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "a@x.com b@y.org sync"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com", "b@y.org"}, plan.InviteeEmails)
	assert.Equal(t, []string{"x.com", "y.org"}, plan.Filters.InviteeDomains)
	assert.Equal(t, "sync", plan.Residual)
}

func TestBuildPlan_AgentDirective(t *testing.T) {
	tests := []struct {
		name        string
		term        string
		wantEmails  []string
		wantDomains []string
		wantResidue string
	}{
		{
			name:        "email directive",
			term:        `@agent("bob@corp.io") roadmap`,
			wantEmails:  []string{"bob@corp.io"},
			wantDomains: nil,
			wantResidue: "roadmap",
		},
		{
			name:        "domain directive",
			term:        `@agent("corp.io") roadmap`,
			wantEmails:  nil,
			wantDomains: []string{"corp.io"},
			wantResidue: "roadmap",
		},
		{
			name:        "empty directive ignored",
			term:        `@agent("") planning`,
			wantEmails:  nil,
			wantDomains: nil,
			wantResidue: "planning",
		},
	}

	p := newTestPlanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := p.BuildPlan(Request{SearchTerm: tt.term})
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmails, plan.InviteeEmails)
			assert.Equal(t, tt.wantDomains, plan.Filters.InviteeDomains)
			assert.Equal(t, tt.wantResidue, plan.Residual)
		})
	}
}

func TestBuildPlan_BareDomainToken(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "meetings with legalstart.fr people"})
	require.NoError(t, err)

	assert.Equal(t, []string{"legalstart.fr"}, plan.Filters.InviteeDomains)
	assert.Empty(t, plan.InviteeEmails)
	assert.Equal(t, "meetings with people", plan.Residual)
	assert.True(t, plan.Exhaustive)
}

func TestBuildPlan_WholeTermDomain(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "legalstart.fr"})
	require.NoError(t, err)

	assert.Equal(t, []string{"legalstart.fr"}, plan.Filters.InviteeDomains)
	assert.Empty(t, plan.Residual)
}

func TestBuildPlan_TeamTerm(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "Platform Team"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Platform Team"}, plan.Filters.Teams)
	assert.Empty(t, plan.Residual)
	assert.True(t, plan.Exhaustive)
}

func TestBuildPlan_PersonNameStaysResidual(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "Jane Smith"})
	require.NoError(t, err)

	// 人名不下推，只留给客户端匹配
	assert.Empty(t, plan.InviteeEmails)
	assert.Empty(t, plan.Filters.InviteeDomains)
	assert.Empty(t, plan.Filters.Teams)
	assert.Equal(t, "Jane Smith", plan.Residual)
	assert.False(t, plan.Exhaustive)
}

func TestBuildPlan_LastN(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "last 3 meetings"})
	require.NoError(t, err)

	assert.Equal(t, OrderLastN, plan.Ordering)
	assert.Equal(t, 3, plan.Count)
	assert.True(t, plan.Exhaustive)
	// 只剥离 "last 3"，其余文本仍是匹配词
	assert.Equal(t, "meetings", plan.Residual)
}

func TestBuildPlan_LastNCapped(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "last 500 syncs"})
	require.NoError(t, err)

	assert.Equal(t, OrderLastN, plan.Ordering)
	assert.Equal(t, MaxLimit, plan.Count)
}

func TestBuildPlan_DefaultFirstN(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{SearchTerm: "standup"})
	require.NoError(t, err)
	assert.Equal(t, OrderFirstN, plan.Ordering)
	assert.Equal(t, DefaultLimit, plan.Count)

	plan, err = p.BuildPlan(Request{SearchTerm: "standup", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, plan.Count)
}

func TestBuildPlan_DateWindow(t *testing.T) {
	p := newTestPlanner()

	t.Run("default 180 days", func(t *testing.T) {
		plan, err := p.BuildPlan(Request{SearchTerm: "sync"})
		require.NoError(t, err)
		require.NotNil(t, plan.Filters.CreatedAfter)
		assert.Equal(t, testNow.AddDate(0, 0, -DefaultDaysBack), *plan.Filters.CreatedAfter)
		assert.Equal(t, DefaultDaysBack, plan.DaysBack)
	})

	t.Run("days_back capped at 365", func(t *testing.T) {
		plan, err := p.BuildPlan(Request{SearchTerm: "sync", DaysBack: 900})
		require.NoError(t, err)
		assert.Equal(t, testNow.AddDate(0, 0, -MaxDaysBack), *plan.Filters.CreatedAfter)
		assert.Equal(t, MaxDaysBack, plan.DaysBack)
	})

	t.Run("explicit created_after wins", func(t *testing.T) {
		after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		plan, err := p.BuildPlan(Request{SearchTerm: "sync", CreatedAfter: &after, DaysBack: 30})
		require.NoError(t, err)
		assert.Equal(t, after, *plan.Filters.CreatedAfter)
		assert.Equal(t, 0, plan.DaysBack)
	})
}

func TestBuildPlan_StructuredHintsMerged(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{
		SearchTerm:       "quarterly review bob@corp.io",
		CalendarInvitees: []string{"Bob@Corp.io", "alice@corp.io"},
		InviteeDomains:   []string{"partner.com"},
		RecordedBy:       []string{"owner@corp.io"},
	})
	require.NoError(t, err)

	// 结构化提示先于提取结果，重复项按小写去重
	assert.Equal(t, []string{"bob@corp.io", "alice@corp.io"}, plan.InviteeEmails)
	assert.Equal(t, []string{"partner.com", "corp.io"}, plan.Filters.InviteeDomains)
	assert.Equal(t, []string{"owner@corp.io"}, plan.Filters.RecordedBy)
	assert.True(t, plan.Exhaustive)
}

func TestBuildPlan_IncludeTogglesPropagated(t *testing.T) {
	p := newTestPlanner()

	plan, err := p.BuildPlan(Request{
		SearchTerm:         "sync",
		IncludeSummary:     true,
		IncludeActionItems: true,
		IncludeTranscript:  true,
	})
	require.NoError(t, err)

	assert.True(t, plan.Filters.IncludeSummary)
	assert.True(t, plan.Filters.IncludeActionItems)
	assert.True(t, plan.Filters.IncludeTranscript)
}
