package models

import (
	"encoding/json"
	"time"
)

// ActionType classifies an audit entry
type ActionType string

const (
	ActionTypeCreate ActionType = "CREATE"
	ActionTypeUpdate ActionType = "UPDATE"
	ActionTypeDelete ActionType = "DELETE"
	ActionTypeImport ActionType = "IMPORT"
)

func (a ActionType) String() string {
	return string(a)
}

// Audited table names
const (
	TableCampaigns = "campaigns"
	TableLeads     = "leads"
	TableUsers     = "users"
)

// ActionLogColumns is the header of the action log
var ActionLogColumns = []string{
	"log_id", "user_id", "action_type", "table_name",
	"record_id", "old_values", "new_values", "action_timestamp",
}

// ActionLogEntry is one immutable audit record
type ActionLogEntry struct {
	LogID           string          `json:"log_id"`
	UserID          string          `json:"user_id"`
	ActionType      ActionType      `json:"action_type"`
	TableName       string          `json:"table_name"`
	RecordID        string          `json:"record_id"`
	OldValues       json.RawMessage `json:"old_values,omitempty"`
	NewValues       json.RawMessage `json:"new_values,omitempty"`
	ActionTimestamp time.Time       `json:"action_timestamp"`
}
