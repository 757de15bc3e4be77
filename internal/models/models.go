package models

import (
	"encoding/json"
	"time"
)

type Topic struct {
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
}

// Document is one patent or publication as handed over by the ingestion layer.
// Authors and Institutions keep the order in which the source listed them.
type Document struct {
	ID           string   `json:"id" validate:"required,notblank"`
	Type         string   `json:"type"`
	Authors      []string `json:"authors"`
	Institutions []string `json:"institutions"`
	FullText     string   `json:"full_text,omitempty"`
	Topics       []Topic  `json:"topics,omitempty"`
}

const DocumentTypePatent = "patent"

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

type AnalysisRun struct {
	RunID         string          `json:"run_id"`
	Status        string          `json:"status"`
	DocumentCount int             `json:"document_count"`
	WorkflowID    string          `json:"workflow_id,omitempty"`
	FailReason    string          `json:"fail_reason,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
