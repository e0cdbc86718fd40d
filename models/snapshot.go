package models

// Snapshot is one full read of the three logical tables
type Snapshot struct {
	Users     []*User
	Campaigns []*Campaign
	Leads     []*Lead
}

// UserByUsername returns the user or nil
func (s *Snapshot) UserByUsername(username string) *User {
	for _, u := range s.Users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

// UserByID returns the user or nil
func (s *Snapshot) UserByID(userID string) *User {
	for _, u := range s.Users {
		if u.UserID == userID {
			return u
		}
	}
	return nil
}

// CampaignByID returns the campaign and its index, or nil and -1
func (s *Snapshot) CampaignByID(campaignID string) (*Campaign, int) {
	for i, c := range s.Campaigns {
		if c.CampaignID == campaignID {
			return c, i
		}
	}
	return nil, -1
}

// LeadsInCampaign returns the leads routed to campaignID, in table order
func (s *Snapshot) LeadsInCampaign(campaignID string) []*Lead {
	var out []*Lead
	for _, l := range s.Leads {
		if l.InCampaign(campaignID) {
			out = append(out, l)
		}
	}
	return out
}

// CountUsers counts users holding role
func (s *Snapshot) CountUsers(role UserRole) int {
	n := 0
	for _, u := range s.Users {
		if u.Role == role {
			n++
		}
	}
	return n
}
