package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
)

func TestMatcher_EmptyTermPassesAll(t *testing.T) {
	m := NewMatcher()

	records := []fathom.Meeting{
		{Title: "Weekly Sync", URL: "u1"},
		{Title: "Planning", URL: "u2"},
	}
	out := m.Filter(records, "")
	assert.Len(t, out, 2)
}

func TestMatcher_FieldCoverage(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name string
		rec  fathom.Meeting
		term string
		want bool
	}{
		{
			name: "title hit",
			rec:  fathom.Meeting{Title: "Q3 Roadmap Review"},
			term: "roadmap",
			want: true,
		},
		{
			name: "fallback title hit",
			rec:  fathom.Meeting{MeetingTitle: "Budget planning"},
			term: "budget",
			want: true,
		},
		{
			name: "summary hit",
			rec:  fathom.Meeting{DefaultSummary: &fathom.Summary{MarkdownFormatted: "Discussed churn metrics"}},
			term: "churn",
			want: true,
		},
		{
			name: "action item hit",
			rec: fathom.Meeting{ActionItems: []fathom.ActionItem{
				{Description: "Send the renewal contract"},
			}},
			term: "renewal",
			want: true,
		},
		{
			name: "invitee name hit",
			rec: fathom.Meeting{CalendarInvitees: []fathom.Invitee{
				{Name: "Jane Smith", Email: "jane@corp.io"},
			}},
			term: "jane smith",
			want: true,
		},
		{
			name: "invitee email hit",
			rec: fathom.Meeting{CalendarInvitees: []fathom.Invitee{
				{Name: "Jane Smith", Email: "jane@corp.io"},
			}},
			term: "jane@corp.io",
			want: true,
		},
		{
			name: "transcript hit when fetched",
			rec: fathom.Meeting{Transcript: []fathom.TranscriptEntry{
				{Text: "we should revisit the pricing model"},
			}},
			term: "pricing",
			want: true,
		},
		{
			name: "no hit",
			rec:  fathom.Meeting{Title: "Standup"},
			term: "retrospective",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(&tt.rec, tt.term))
		})
	}
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	m := NewMatcher()

	rec := fathom.Meeting{Title: "LEGAL Review with Partners"}
	assert.True(t, m.Matches(&rec, "legal review"))
	assert.True(t, m.Matches(&rec, "PARTNERS"))
}

func TestMatcher_PreservesOrder(t *testing.T) {
	m := NewMatcher()

	records := []fathom.Meeting{
		{Title: "sync A", URL: "u1"},
		{Title: "planning", URL: "u2"},
		{Title: "sync B", URL: "u3"},
	}
	out := m.Filter(records, "sync")
	assert.Len(t, out, 2)
	assert.Equal(t, "sync A", out[0].Title)
	assert.Equal(t, "sync B", out[1].Title)
}
