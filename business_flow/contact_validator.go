package businessflow

import (
	"strings"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
)

// ValidatedContactEdit is a contact edit that passed the status workflow rules
type ValidatedContactEdit struct {
	LeadID      string
	Status      models.LeadStatus
	LastContact *time.Time
	// Notes replaces the lead's notes only when NotesSet; nil then clears them
	Notes    *string
	NotesSet bool
}

// ValidateContactEdits checks the whole batch against the status workflow.
// Statuses that require a contact need both a date and a time; statuses that forbid one need both empty.
// Any violation rejects the batch with a *ContactValidationError.
func ValidateContactEdits(edits []dto.ContactEdit) ([]ValidatedContactEdit, error) {
	verr := &ContactValidationError{}
	out := make([]ValidatedContactEdit, 0, len(edits))

	for _, e := range edits {
		status, err := models.ParseLeadStatus(e.Status)
		if err != nil || status == "" {
			verr.InvalidStatus = append(verr.InvalidStatus, e.LeadID)
			continue
		}

		date, hasDate := trimmedValue(e.ContactDate)
		clock, hasClock := trimmedValue(e.ContactTime)

		req, _ := status.ContactRequirement()
		var lastContact *time.Time
		switch req {
		case models.ContactRequired:
			if !hasDate || !hasClock {
				verr.RequiredViolations = append(verr.RequiredViolations, e.LeadID)
				continue
			}
			ts, ok := combineContact(date, clock)
			if !ok {
				verr.Malformed = append(verr.Malformed, e.LeadID)
				continue
			}
			lastContact = &ts
		case models.ContactForbidden:
			if hasDate || hasClock {
				verr.ForbiddenViolations = append(verr.ForbiddenViolations, e.LeadID)
				continue
			}
		}

		out = append(out, ValidatedContactEdit{
			LeadID:      e.LeadID,
			Status:      status,
			LastContact: lastContact,
			Notes:       notesValue(e.Notes),
			NotesSet:    e.Notes != nil,
		})
	}

	if !verr.Empty() {
		return nil, verr
	}
	return out, nil
}

// ApplyContactEdits writes validated edits into leads and returns how many rows changed.
// updated_at is stamped only on rows whose status, notes or last contact actually moved.
func ApplyContactEdits(leads []*models.Lead, edits []ValidatedContactEdit, now time.Time) int {
	byID := make(map[string]*models.Lead, len(leads))
	for _, l := range leads {
		byID[l.LeadID] = l
	}

	now = utils.TruncateToSecond(now.UTC())
	changed := 0
	for _, e := range edits {
		l, ok := byID[e.LeadID]
		if !ok {
			continue
		}
		notes := l.Notes
		if e.NotesSet {
			notes = e.Notes
		}
		if l.Status == e.Status &&
			utils.EqualStringPtr(l.Notes, notes) &&
			equalTimePtr(l.LastContactDate, e.LastContact) {
			continue
		}
		l.Status = e.Status
		l.Notes = notes
		l.LastContactDate = e.LastContact
		stamp := now
		l.UpdatedAt = &stamp
		changed++
	}
	return changed
}

func trimmedValue(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := strings.TrimSpace(*p)
	return s, s != ""
}

func notesValue(p *string) *string {
	if p == nil {
		return nil
	}
	return utils.NilIfEmpty(*p)
}

// combineContact joins a YYYY-MM-DD date and an HH:MM[:SS] time into a UTC timestamp
func combineContact(date, clock string) (time.Time, bool) {
	d, err := time.Parse(utils.DateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	offset, err := utils.ParseClock(clock)
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(offset).UTC(), true
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
