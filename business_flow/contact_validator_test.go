package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/amirphl/lead-connect/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edit(id, status string, date, clock *string) dto.ContactEdit {
	return dto.ContactEdit{LeadID: id, Status: status, ContactDate: date, ContactTime: clock}
}

func TestValidateContactEdits(t *testing.T) {
	date := utils.ToPtr("2024-03-01")
	clock := utils.ToPtr("10:00:00")
	blank := utils.ToPtr("  ")

	tests := []struct {
		name      string
		edit      dto.ContactEdit
		wantErr   bool
		required  []string
		forbidden []string
		invalid   []string
		malformed []string
		wantLast  *time.Time
	}{
		{
			name:     "contacted with date and time",
			edit:     edit("L1", "contacted", date, clock),
			wantLast: utils.ToPtr(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:     "short clock is accepted",
			edit:     edit("L1", "deal closed", date, utils.ToPtr("09:15")),
			wantLast: utils.ToPtr(time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)),
		},
		{
			name: "not yet contacted without date",
			edit: edit("L1", "not yet contacted", nil, nil),
		},
		{
			name: "not yet contacted with blank cells",
			edit: edit("L1", "not yet contacted", blank, blank),
		},
		{
			name:     "thai label is accepted",
			edit:     edit("L1", "ติดต่อแล้ว", date, clock),
			wantLast: utils.ToPtr(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		},
		{
			name:     "required status missing time",
			edit:     edit("L1", "pending decision", date, nil),
			wantErr:  true,
			required: []string{"L1"},
		},
		{
			name:     "required status missing both",
			edit:     edit("L1", "unreachable", nil, nil),
			wantErr:  true,
			required: []string{"L1"},
		},
		{
			name:      "forbidden status with date",
			edit:      edit("L1", "not yet contacted", date, nil),
			wantErr:   true,
			forbidden: []string{"L1"},
		},
		{
			name:      "forbidden status with time only",
			edit:      edit("L1", "not yet contacted", nil, clock),
			wantErr:   true,
			forbidden: []string{"L1"},
		},
		{
			name:    "unknown status",
			edit:    edit("L1", "maybe later", date, clock),
			wantErr: true,
			invalid: []string{"L1"},
		},
		{
			name:    "empty status",
			edit:    edit("L1", "", nil, nil),
			wantErr: true,
			invalid: []string{"L1"},
		},
		{
			name:      "malformed date",
			edit:      edit("L1", "contacted", utils.ToPtr("01/03/2024"), clock),
			wantErr:   true,
			malformed: []string{"L1"},
		},
		{
			name:      "malformed time",
			edit:      edit("L1", "contacted", date, utils.ToPtr("25:99")),
			wantErr:   true,
			malformed: []string{"L1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ValidateContactEdits([]dto.ContactEdit{tt.edit})
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, out)
				verr, ok := AsContactValidationError(err)
				require.True(t, ok)
				assert.Equal(t, tt.required, verr.RequiredViolations)
				assert.Equal(t, tt.forbidden, verr.ForbiddenViolations)
				assert.Equal(t, tt.invalid, verr.InvalidStatus)
				assert.Equal(t, tt.malformed, verr.Malformed)
				return
			}
			require.NoError(t, err)
			require.Len(t, out, 1)
			if tt.wantLast == nil {
				assert.Nil(t, out[0].LastContact)
			} else {
				require.NotNil(t, out[0].LastContact)
				assert.True(t, tt.wantLast.Equal(*out[0].LastContact))
			}
		})
	}
}

// Every status maps to exactly one contact rule and validation enforces it
func TestStatusContactCoupling(t *testing.T) {
	date := utils.ToPtr("2024-03-01")
	clock := utils.ToPtr("10:00:00")

	for _, status := range models.AllLeadStatuses {
		t.Run(status.String(), func(t *testing.T) {
			req, ok := status.ContactRequirement()
			require.True(t, ok)

			_, withErr := ValidateContactEdits([]dto.ContactEdit{edit("L1", status.String(), date, clock)})
			_, withoutErr := ValidateContactEdits([]dto.ContactEdit{edit("L1", status.String(), nil, nil)})

			switch req {
			case models.ContactRequired:
				assert.NoError(t, withErr)
				assert.Error(t, withoutErr)
			case models.ContactForbidden:
				assert.Error(t, withErr)
				assert.NoError(t, withoutErr)
			default:
				t.Fatalf("unexpected requirement %v", req)
			}
		})
	}
}

func TestValidateContactEditsRejectsWholeBatch(t *testing.T) {
	edits := []dto.ContactEdit{
		edit("L1", "contacted", utils.ToPtr("2024-03-01"), utils.ToPtr("10:00:00")),
		edit("L2", "not yet contacted", utils.ToPtr("2024-03-01"), nil),
		edit("L3", "deal closed", nil, nil),
		edit("L4", "not yet contacted", nil, nil),
	}

	out, err := ValidateContactEdits(edits)
	require.Error(t, err)
	assert.Nil(t, out)

	verr, ok := AsContactValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"L3"}, verr.RequiredViolations)
	assert.Equal(t, []string{"L2"}, verr.ForbiddenViolations)
	assert.Contains(t, err.Error(), "L2")
	assert.Contains(t, err.Error(), "L3")
}

func TestApplyContactEdits(t *testing.T) {
	now := time.Date(2024, 3, 2, 8, 0, 0, 500, time.UTC)
	contact := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	unchanged := testingutil.NewLead("CAMP-001", "ic101")
	unchanged.Notes = utils.ToPtr("call back")
	statusOnly := testingutil.NewLead("CAMP-001", "ic101")
	notesOnly := testingutil.NewLead("CAMP-001", "ic101")
	contacted := testingutil.NewLead("CAMP-001", "ic101")
	contacted.Status = models.LeadStatusContacted
	contacted.LastContactDate = utils.ToPtr(contact)
	reset := testingutil.NewLead("CAMP-001", "ic101")
	reset.Status = models.LeadStatusContacted
	reset.LastContactDate = utils.ToPtr(contact)
	leads := []*models.Lead{unchanged, statusOnly, notesOnly, contacted, reset}

	edits := []ValidatedContactEdit{
		{LeadID: unchanged.LeadID, Status: models.LeadStatusNotYetContacted, Notes: utils.ToPtr("call back"), NotesSet: true},
		{LeadID: statusOnly.LeadID, Status: models.LeadStatusUnreachable, LastContact: utils.ToPtr(contact)},
		{LeadID: notesOnly.LeadID, Status: models.LeadStatusNotYetContacted, Notes: utils.ToPtr("new note"), NotesSet: true},
		{LeadID: contacted.LeadID, Status: models.LeadStatusContacted, LastContact: utils.ToPtr(contact)},
		{LeadID: reset.LeadID, Status: models.LeadStatusNotYetContacted},
		{LeadID: "missing", Status: models.LeadStatusNotYetContacted},
	}

	changed := ApplyContactEdits(leads, edits, now)
	assert.Equal(t, 3, changed)

	stamped := now.Truncate(time.Second)
	assert.Equal(t, testingutil.FixedTime, *unchanged.UpdatedAt)
	assert.Equal(t, testingutil.FixedTime, *contacted.UpdatedAt)
	assert.Equal(t, stamped, *statusOnly.UpdatedAt)
	assert.Equal(t, stamped, *notesOnly.UpdatedAt)
	assert.Equal(t, stamped, *reset.UpdatedAt)

	assert.Equal(t, models.LeadStatusUnreachable, statusOnly.Status)
	assert.Equal(t, contact, *statusOnly.LastContactDate)
	assert.Equal(t, "new note", *notesOnly.Notes)
	assert.Nil(t, reset.LastContactDate)
	assert.Equal(t, models.LeadStatusNotYetContacted, reset.Status)
}

func TestNotesBlankIsNull(t *testing.T) {
	out, err := ValidateContactEdits([]dto.ContactEdit{{
		LeadID: "L1",
		Status: "not yet contacted",
		Notes:  utils.ToPtr("   "),
	}})
	require.NoError(t, err)
	assert.Nil(t, out[0].Notes)
	assert.True(t, out[0].NotesSet)

	// nil and blank notes compare equal, so nothing changes
	lead := testingutil.NewLead("CAMP-001", "ic101")
	assert.Equal(t, 0, ApplyContactEdits([]*models.Lead{lead}, out, testingutil.FixedTime.Add(time.Hour)))
}

func TestOmittedNotesAreKept(t *testing.T) {
	contact := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := testingutil.FixedTime.Add(time.Hour)

	tests := []struct {
		name        string
		notes       *string
		wantNotes   *string
		wantChanged int
	}{
		{name: "omitted", notes: nil, wantNotes: utils.ToPtr("call back"), wantChanged: 0},
		{name: "empty clears", notes: utils.ToPtr(""), wantNotes: nil, wantChanged: 1},
		{name: "replaced", notes: utils.ToPtr("signed"), wantNotes: utils.ToPtr("signed"), wantChanged: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := testingutil.NewLead("CAMP-001", "ic101")
			lead.Status = models.LeadStatusContacted
			lead.LastContactDate = utils.ToPtr(contact)
			lead.Notes = utils.ToPtr("call back")

			out, err := ValidateContactEdits([]dto.ContactEdit{{
				LeadID:      lead.LeadID,
				Status:      "contacted",
				ContactDate: utils.ToPtr("2024-03-01"),
				ContactTime: utils.ToPtr("10:00:00"),
				Notes:       tt.notes,
			}})
			require.NoError(t, err)

			assert.Equal(t, tt.wantChanged, ApplyContactEdits([]*models.Lead{lead}, out, now))
			assert.Equal(t, tt.wantNotes, lead.Notes)
			if tt.wantChanged == 0 {
				assert.Equal(t, testingutil.FixedTime, *lead.UpdatedAt)
			}
		})
	}
}
