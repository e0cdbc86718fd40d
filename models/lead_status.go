package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// LeadStatus is the outreach state of a lead
type LeadStatus string

const (
	LeadStatusNotYetContacted LeadStatus = "not yet contacted"
	LeadStatusContacted       LeadStatus = "contacted"
	LeadStatusDealClosed      LeadStatus = "deal closed"
	LeadStatusPendingDecision LeadStatus = "pending decision"
	LeadStatusNotInterested   LeadStatus = "not interested"
	LeadStatusUnreachable     LeadStatus = "unreachable"
)

// AllLeadStatuses lists statuses in the order they are offered to representatives
var AllLeadStatuses = []LeadStatus{
	LeadStatusNotYetContacted,
	LeadStatusContacted,
	LeadStatusDealClosed,
	LeadStatusPendingDecision,
	LeadStatusNotInterested,
	LeadStatusUnreachable,
}

// Thai labels used by files exported from the first version of the tracker
var leadStatusLabels = map[LeadStatus]string{
	LeadStatusNotYetContacted: "ยังไม่ติดต่อ",
	LeadStatusContacted:       "ติดต่อแล้ว",
	LeadStatusDealClosed:      "ปิดการขายสำเร็จ",
	LeadStatusPendingDecision: "รอตัดสินใจ",
	LeadStatusNotInterested:   "ไม่สนใจ",
	LeadStatusUnreachable:     "ติดต่อไม่ได้",
}

// ContactRequirement says whether a status demands a contact timestamp
type ContactRequirement int

const (
	ContactForbidden ContactRequirement = iota + 1
	ContactRequired
)

func (r ContactRequirement) String() string {
	switch r {
	case ContactForbidden:
		return "forbidden"
	case ContactRequired:
		return "required"
	default:
		return "unknown"
	}
}

// String returns the string representation of the status
func (s LeadStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s LeadStatus) Valid() bool {
	_, ok := s.ContactRequirement()
	return ok
}

// ContactRequirement reports the contact timestamp rule for s. ok is false for unknown statuses.
func (s LeadStatus) ContactRequirement() (req ContactRequirement, ok bool) {
	switch s {
	case LeadStatusNotYetContacted:
		return ContactForbidden, true
	case LeadStatusContacted,
		LeadStatusDealClosed,
		LeadStatusPendingDecision,
		LeadStatusNotInterested,
		LeadStatusUnreachable:
		return ContactRequired, true
	default:
		return 0, false
	}
}

// Label returns the Thai display label, or the stored text for a status this release does not know
func (s LeadStatus) Label() string {
	if label, ok := leadStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseLeadStatus accepts canonical names in any case as well as the Thai labels.
// An empty string yields the zero status.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	lower := strings.ToLower(s)
	for _, st := range AllLeadStatuses {
		if lower == string(st) || s == leadStatusLabels[st] {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown lead status %q", raw)
}

// Scan implements the sql.Scanner interface for LeadStatus
func (s *LeadStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = LeadStatus(v)
	case []byte:
		*s = LeadStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LeadStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LeadStatus.
// Unknown text read from older files is stored unchanged.
func (s LeadStatus) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

// Priority ranks how soon a lead should be worked
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) String() string {
	return string(p)
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority is case-insensitive; an empty string yields the zero priority
func ParsePriority(raw string) (Priority, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// Scan implements the sql.Scanner interface for Priority
func (p *Priority) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = Priority(v)
	case []byte:
		*p = Priority(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Priority", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Priority
func (p Priority) Value() (driver.Value, error) {
	if p == "" {
		return nil, nil
	}
	return string(p), nil
}
