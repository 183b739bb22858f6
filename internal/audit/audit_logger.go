// Package audit records every search request for after-the-fact review.
package audit

import (
	"encoding/json"
	"log"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SearchRecord is one audit entry, written as a single JSON line.
type SearchRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
	Caller       string    `json:"caller,omitempty"`
	SearchTerm   string    `json:"search_term"`
	ExcludeTeams []string  `json:"exclude_teams,omitempty"`
	DaysBack     int       `json:"days_back"`
	TotalFound   int       `json:"total_found"`
	Showing      int       `json:"showing"`
	Truncated    bool      `json:"truncated"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorCode    string    `json:"error_code,omitempty"`
}

// Logger records search requests with automatic log rotation.
type Logger struct {
	logger *log.Logger
}

// NewLogger creates an audit logger backed by a rotating file.
// The logger uses lumberjack for rotating log files based on size and age.
func NewLogger(logPath string) *Logger {
	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    100, // MB
		MaxBackups: 10,  // Keep 10 old files
		MaxAge:     30,  // Keep for 30 days
		Compress:   true,
	}

	return &Logger{
		logger: log.New(writer, "", 0), // No prefix, no timestamp (entries carry their own)
	}
}

// Record writes one audit entry. Failures to serialize are logged raw
// rather than dropped, so the audit trail stays complete.
func (a *Logger) Record(rec SearchRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		a.logger.Printf(`{"timestamp":%q,"error":"audit marshal failed: %v"}`, rec.Timestamp.Format(time.RFC3339), err)
		return
	}
	a.logger.Print(string(data))
}
