package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// DashboardFlow aggregates lead progress for admins and representatives
type DashboardFlow interface {
	AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error)
	ICDashboard(ctx context.Context, actor models.Actor) (*dto.ICDashboardResponse, error)
}

// DashboardFlowImpl implements the dashboard flow
type DashboardFlowImpl struct {
	store  repository.DataStore
	logger *zap.Logger
}

// NewDashboardFlow creates a new dashboard flow
func NewDashboardFlow(store repository.DataStore, logger *zap.Logger) DashboardFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardFlowImpl{store: store, logger: logger}
}

// AdminDashboard counts every lead and breaks closed and pending leads down by hub
func (f *DashboardFlowImpl) AdminDashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("ADMIN_DASHBOARD_FAILED", "Failed to load data", err)
	}

	resp := &dto.AdminDashboardResponse{
		TotalLeads:     len(snapshot.Leads),
		TotalCampaigns: len(snapshot.Campaigns),
		TotalICs:       snapshot.CountUsers(models.UserRoleIC),
	}

	var rows []groupRow
	for _, l := range snapshot.Leads {
		closed := l.Status == models.LeadStatusDealClosed
		if closed {
			resp.ClosedDeals++
		}
		// leads without a hub are counted in the totals only
		if l.AssignedHub != nil {
			rows = append(rows, groupRow{key: *l.AssignedHub, closed: closed})
		}
	}

	hubs, err := closedPendingByGroup(rows)
	if err != nil {
		return nil, NewBusinessError("ADMIN_DASHBOARD_FAILED", "Failed to aggregate leads", err)
	}
	resp.Hubs = hubs
	return resp, nil
}

// ICDashboard summarizes the actor's own leads, broken down by campaign
func (f *DashboardFlowImpl) ICDashboard(ctx context.Context, actor models.Actor) (*dto.ICDashboardResponse, error) {
	snapshot, err := f.store.LoadAllData(ctx)
	if err != nil {
		return nil, NewBusinessError("IC_DASHBOARD_FAILED", "Failed to load data", err)
	}

	resp := &dto.ICDashboardResponse{}
	var rows []groupRow
	for _, l := range snapshot.Leads {
		if !l.AssignedTo(actor.Username) {
			continue
		}
		resp.TotalLeads++
		closed := l.Status == models.LeadStatusDealClosed
		if closed {
			resp.ClosedDeals++
		}
		if effectiveStatus(l) == models.LeadStatusNotYetContacted {
			resp.NotContacted++
		}
		if l.Priority == models.PriorityHigh {
			resp.HighPriority++
		}
		if l.CampaignID != nil {
			rows = append(rows, groupRow{key: *l.CampaignID, closed: closed})
		}
	}

	stats, err := closedPendingByGroup(rows)
	if err != nil {
		return nil, NewBusinessError("IC_DASHBOARD_FAILED", "Failed to aggregate leads", err)
	}
	for i := range stats {
		if c, _ := snapshot.CampaignByID(stats[i].Key); c != nil {
			stats[i].Label = c.CampaignName
		}
	}
	resp.Campaigns = stats
	return resp, nil
}

type groupRow struct {
	key    string
	closed bool
}

const (
	groupKeyCol    = "key"
	groupClosedCol = "closed"
)

// closedPendingByGroup groups rows by key and counts closed and pending leads per group, sorted by key
func closedPendingByGroup(rows []groupRow) ([]dto.GroupStat, error) {
	if len(rows) == 0 {
		return []dto.GroupStat{}, nil
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{groupKeyCol, groupClosedCol})
	for _, r := range rows {
		closed := 0
		if r.closed {
			closed = 1
		}
		records = append(records, []string{r.key, strconv.Itoa(closed)})
	}

	df := dataframe.LoadRecords(records,
		dataframe.WithTypes(map[string]series.Type{
			groupKeyCol:    series.String,
			groupClosedCol: series.Int,
		}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to build lead frame: %w", df.Err)
	}

	groups := df.GroupBy(groupKeyCol)
	if groups.Err != nil {
		return nil, fmt.Errorf("failed to group leads: %w", groups.Err)
	}

	stats := make([]dto.GroupStat, 0)
	for _, g := range groups.GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		total := g.Nrow()
		closed := int(g.Col(groupClosedCol).Sum())
		stats = append(stats, dto.GroupStat{
			Key:     g.Col(groupKeyCol).Elem(0).String(),
			Total:   total,
			Closed:  closed,
			Pending: total - closed,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats, nil
}
