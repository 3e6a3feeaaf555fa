package dto

import (
	"time"

	"github.com/telesales/callops-service/internal/domain"
)

// ImportRowRequest is one entry of an import batch.
type ImportRowRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Equipment string `json:"equipment"`
}

// ImportRequest payload.
type ImportRequest struct {
	CallType   domain.CallType    `json:"call_type"`
	OperatorID string             `json:"operator_id"`
	Rows       []ImportRowRequest `json:"rows"`
}

// ImportResponse payload.
type ImportResponse struct {
	Created int `json:"created"`
}

// ProtocolDraftRequest carries the protocol opened by a call report.
type ProtocolDraftRequest struct {
	Title        string                  `json:"title"`
	DepartmentID string                  `json:"department_id"`
	Priority     domain.ProtocolPriority `json:"priority"`
}

// CompleteTaskRequest payload.
type CompleteTaskRequest struct {
	Responses     map[string]any        `json:"responses"`
	Summary       string                `json:"summary"`
	StartTime     *time.Time            `json:"start_time"`
	Duration      int                   `json:"duration"`
	ReportTime    int                   `json:"report_time"`
	NeedsProtocol bool                  `json:"needs_protocol"`
	Protocol      *ProtocolDraftRequest `json:"protocol"`
}

// SkipTaskRequest payload.
type SkipTaskRequest struct {
	Reason string `json:"reason"`
}

// TaskResponse payload.
type TaskResponse struct {
	ID         string            `json:"id"`
	ClientID   string            `json:"client_id"`
	Type       domain.CallType   `json:"type"`
	AssignedTo string            `json:"assigned_to"`
	Status     domain.TaskStatus `json:"status"`
	SkipReason *string           `json:"skip_reason,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewTaskResponse maps a task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		ClientID:   t.ClientID,
		Type:       t.Type,
		AssignedTo: t.AssignedTo,
		Status:     t.Status,
		SkipReason: t.SkipReason,
		CreatedAt:  t.CreatedAt,
	}
}

// UpsertClientRequest is the manual client save payload. The phone is the
// upsert key after normalization.
type UpsertClientRequest struct {
	Name         string                     `json:"name"`
	Phone        string                     `json:"phone"`
	Address      string                     `json:"address"`
	Items        []string                   `json:"items"`
	Acceptance   domain.ClassificationLevel `json:"acceptance"`
	Satisfaction domain.ClassificationLevel `json:"satisfaction"`
}

// ClientResponse payload.
type ClientResponse struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	Phone           string                     `json:"phone"`
	Address         string                     `json:"address,omitempty"`
	Items           []string                   `json:"items"`
	Acceptance      domain.ClassificationLevel `json:"acceptance"`
	Satisfaction    domain.ClassificationLevel `json:"satisfaction"`
	LastInteraction *time.Time                 `json:"last_interaction"`
}

// NewClientResponse maps a client.
func NewClientResponse(cl *domain.Client) ClientResponse {
	return ClientResponse{
		ID:              cl.ID,
		Name:            cl.Name,
		Phone:           cl.Phone,
		Address:         cl.Address,
		Items:           cl.Items,
		Acceptance:      cl.Acceptance,
		Satisfaction:    cl.Satisfaction,
		LastInteraction: cl.LastInteraction,
	}
}

// NextTaskResponse payload. Task is null when the queue is empty.
type NextTaskResponse struct {
	Task       *TaskResponse   `json:"task"`
	Client     *ClientResponse `json:"client,omitempty"`
	RecentCall bool            `json:"recent_call"`
}

// CallResponse payload.
type CallResponse struct {
	ID         string          `json:"id"`
	TaskID     *string         `json:"task_id"`
	OperatorID string          `json:"operator_id"`
	ClientID   string          `json:"client_id"`
	Type       domain.CallType `json:"type"`
	Duration   int             `json:"duration"`
	ReportTime int             `json:"report_time"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Responses  map[string]any  `json:"responses"`
	ProtocolID *string         `json:"protocol_id,omitempty"`
}

// NewCallResponse maps a call record.
func NewCallResponse(call *domain.CallRecord) CallResponse {
	return CallResponse{
		ID:         call.ID,
		TaskID:     call.TaskID,
		OperatorID: call.OperatorID,
		ClientID:   call.ClientID,
		Type:       call.Type,
		Duration:   call.Duration,
		ReportTime: call.ReportTime,
		StartTime:  call.StartTime,
		EndTime:    call.EndTime,
		Responses:  call.Responses,
		ProtocolID: call.ProtocolID,
	}
}

// QuestionRequest payload for saving questionnaire entries.
type QuestionRequest struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Type    string   `json:"type"`
	Order   int      `json:"order"`
	StageID string   `json:"stage_id"`
}

// QuestionResponse payload.
type QuestionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Type    string   `json:"type"`
	Order   int      `json:"order"`
	StageID string   `json:"stage_id,omitempty"`
}

// NewQuestionResponse maps a question.
func NewQuestionResponse(q domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:      q.ID,
		Text:    q.Text,
		Options: q.Options,
		Type:    q.Type,
		Order:   q.Order,
		StageID: q.StageID,
	}
}
