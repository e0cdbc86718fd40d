package businessflow

import (
	"fmt"
	"strconv"

	"github.com/amirphl/lead-connect/models"
)

// NextCampaignID returns the id the next campaign receives: the largest CAMP-<n> suffix plus one,
// padded to three digits. Ids outside the pattern are ignored.
func NextCampaignID(campaigns []*models.Campaign) string {
	highest := 0
	for _, c := range campaigns {
		if c == nil {
			continue
		}
		m := models.CampaignIDPattern.FindStringSubmatch(c.CampaignID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", models.CampaignIDPrefix, highest+1)
}
