package domain

import "time"

// Response map keys written alongside the questionnaire answers.
const (
	ResponseKeySummary  = "written_report"
	ResponseKeyCallType = "call_type"
)

// CallRecord is the immutable result of a completed task. It is never
// updated after insertion.
type CallRecord struct {
	ID         string
	TaskID     *string
	OperatorID string
	ClientID   string
	StartTime  time.Time
	EndTime    time.Time
	Duration   int
	ReportTime int
	Responses  map[string]any
	Type       CallType
	ProtocolID *string
}
