package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
)

// rowGetter returns the cell for a column as stored, or "" when the column is absent
type rowGetter func(col string) string

// key returns the cell with surrounding whitespace removed. Ids, enums and timestamps go through it;
// free text is kept exactly as stored.
func (get rowGetter) key(col string) string {
	return strings.TrimSpace(get(col))
}

// RecordCodec converts between entities and tabular rows
type RecordCodec[T any] struct {
	Columns []string
	Decode  func(get rowGetter) (*T, error)
	Encode  func(entity *T) []string
}

// DecodeAll converts every row of sheet. Columns missing from the sheet decode as empty cells.
func (c RecordCodec[T]) DecodeAll(sheet *Sheet) ([]*T, error) {
	idx := sheet.Index()
	out := make([]*T, 0, len(sheet.Rows))
	for n, row := range sheet.Rows {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok {
				return ""
			}
			return sheet.Cell(row, i)
		}
		entity, err := c.Decode(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

// EncodeAll renders entities under the codec's header
func (c RecordCodec[T]) EncodeAll(entities []*T) *Sheet {
	sheet := &Sheet{Header: append([]string(nil), c.Columns...)}
	for _, e := range entities {
		sheet.Rows = append(sheet.Rows, c.Encode(e))
	}
	return sheet
}

// LeadCodec maps leads to the fixed lead schema
var LeadCodec = RecordCodec[models.Lead]{
	Columns: models.LeadColumns,
	Decode:  decodeLead,
	Encode:  encodeLead,
}

func decodeLead(get rowGetter) (*models.Lead, error) {
	lastContact, err := optionalTimestamp(get.key(models.LeadColLastContactDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.LeadColLastContactDate, err)
	}
	createdAt, err := optionalTimestamp(get.key(models.LeadColCreatedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.LeadColCreatedAt, err)
	}
	updatedAt, err := optionalTimestamp(get.key(models.LeadColUpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", models.LeadColUpdatedAt, err)
	}

	return &models.Lead{
		LeadID:           get.key(models.LeadColLeadID),
		CampaignID:       utils.NilIfEmpty(get.key(models.LeadColCampaignID)),
		CustomerName:     utils.NilIfEmpty(get(models.LeadColCustomerName)),
		Phone:            utils.NilIfEmpty(get(models.LeadColPhone)),
		Email:            utils.NilIfEmpty(get(models.LeadColEmail)),
		BirthDate:        utils.NilIfEmpty(get(models.LeadColBirthDate)),
		InvestmentLevel:  utils.NilIfEmpty(get(models.LeadColInvestmentLevel)),
		PreviousProduct:  utils.NilIfEmpty(get(models.LeadColPreviousProduct)),
		InvestmentBudget: utils.NilIfEmpty(get(models.LeadColInvestmentBudget)),
		PreferredContact: utils.NilIfEmpty(get(models.LeadColPreferredContact)),
		PolicyName:       utils.NilIfEmpty(get(models.LeadColPolicyName)),
		MaturityDate:     utils.NilIfEmpty(get(models.LeadColMaturityDate)),
		MaturityAmount:   utils.NilIfEmpty(get(models.LeadColMaturityAmount)),
		AssignedHub:      utils.NilIfEmpty(get.key(models.LeadColAssignedHub)),
		AssignedIC:       utils.NilIfEmpty(get.key(models.LeadColAssignedIC)),
		Status:           storedLeadStatus(get.key(models.LeadColStatus)),
		Priority:         storedPriority(get.key(models.LeadColPriority)),
		LastContactDate:  lastContact,
		NextContactDate:  utils.NilIfEmpty(get.key(models.LeadColNextContactDate)),
		Notes:            utils.NilIfEmpty(get(models.LeadColNotes)),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func encodeLead(l *models.Lead) []string {
	return []string{
		l.LeadID,
		utils.Deref(l.CampaignID),
		utils.Deref(l.CustomerName),
		utils.Deref(l.Phone),
		utils.Deref(l.Email),
		utils.Deref(l.BirthDate),
		utils.Deref(l.InvestmentLevel),
		utils.Deref(l.PreviousProduct),
		utils.Deref(l.InvestmentBudget),
		utils.Deref(l.PreferredContact),
		utils.Deref(l.PolicyName),
		utils.Deref(l.MaturityDate),
		utils.Deref(l.MaturityAmount),
		utils.Deref(l.AssignedHub),
		utils.Deref(l.AssignedIC),
		l.Status.String(),
		l.Priority.String(),
		utils.FormatTimestampPtr(l.LastContactDate),
		utils.Deref(l.NextContactDate),
		utils.Deref(l.Notes),
		utils.FormatTimestampPtr(l.CreatedAt),
		utils.FormatTimestampPtr(l.UpdatedAt),
	}
}

// CampaignCodec maps campaigns to the campaigns table
var CampaignCodec = RecordCodec[models.Campaign]{
	Columns: models.CampaignColumns,
	Decode:  decodeCampaign,
	Encode:  encodeCampaign,
}

func decodeCampaign(get rowGetter) (*models.Campaign, error) {
	start, err := optionalDate(get.key("start_date"))
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := optionalDate(get.key("end_date"))
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	createdAt, err := optionalTimestamp(get.key("created_at"))
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}

	return &models.Campaign{
		CampaignID:   get.key("campaign_id"),
		CampaignName: get("campaign_name"),
		CampaignType: storedCampaignType(get.key("campaign_type")),
		Description:  utils.NilIfEmpty(get("description")),
		StartDate:    start,
		EndDate:      end,
		ImagePath:    utils.NilIfEmpty(get("image_path")),
		DocumentPath: utils.NilIfEmpty(get("document_path")),
		CreatedBy:    utils.NilIfEmpty(get.key("created_by")),
		CreatedAt:    createdAt,
		Status:       utils.NilIfEmpty(get.key("status")),
	}, nil
}

func encodeCampaign(c *models.Campaign) []string {
	return []string{
		c.CampaignID,
		c.CampaignName,
		c.CampaignType.String(),
		utils.Deref(c.Description),
		formatDatePtr(c.StartDate),
		formatDatePtr(c.EndDate),
		utils.Deref(c.ImagePath),
		utils.Deref(c.DocumentPath),
		utils.Deref(c.CreatedBy),
		utils.FormatTimestampPtr(c.CreatedAt),
		utils.Deref(c.Status),
	}
}

// UserCodec maps users to the users table
var UserCodec = RecordCodec[models.User]{
	Columns: models.UserColumns,
	Decode:  decodeUser,
	Encode:  encodeUser,
}

func decodeUser(get rowGetter) (*models.User, error) {
	createdAt, err := optionalTimestamp(get.key("created_at"))
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	return &models.User{
		UserID:       get.key("user_id"),
		Username:     get.key("username"),
		PasswordHash: get.key("password_hash"),
		FullName:     utils.NilIfEmpty(get("full_name")),
		Role:         storedUserRole(get.key("role")),
		HubName:      utils.NilIfEmpty(get.key("hub_name")),
		CreatedAt:    createdAt,
	}, nil
}

func encodeUser(u *models.User) []string {
	return []string{
		u.UserID,
		u.Username,
		u.PasswordHash,
		utils.Deref(u.FullName),
		u.Role.String(),
		utils.Deref(u.HubName),
		utils.FormatTimestampPtr(u.CreatedAt),
	}
}

// Enum cells written by other tools may hold values this release does not know.
// They are kept verbatim so a later save writes them back unchanged.

func storedLeadStatus(raw string) models.LeadStatus {
	if st, err := models.ParseLeadStatus(raw); err == nil {
		return st
	}
	return models.LeadStatus(raw)
}

func storedPriority(raw string) models.Priority {
	if p, err := models.ParsePriority(raw); err == nil {
		return p
	}
	return models.Priority(raw)
}

func storedCampaignType(raw string) models.CampaignType {
	if t, err := models.ParseCampaignType(raw); err == nil {
		return t
	}
	return models.CampaignType(raw)
}

func storedUserRole(raw string) models.UserRole {
	if r, err := models.ParseUserRole(raw); err == nil {
		return r
	}
	return models.UserRole(raw)
}

func optionalTimestamp(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(utils.DateLayout)
}
