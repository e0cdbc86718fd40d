package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv is a data directory on disk with every flow wired to it
type testEnv struct {
	dir         testingutil.DataDir
	users       repository.UserRepository
	shards      *repository.ShardStore
	store       *repository.DataStoreImpl
	actionLog   *repository.ActionLogRepositoryImpl
	coordinator *StoreCoordinator

	admin models.Actor
	ic101 models.Actor
	ic201 models.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := testingutil.NewDataDir(t.TempDir())
	logger := zap.NewNop()

	shards := repository.NewShardStore(repository.ShardStoreConfig{
		Dir:        dir.Leads,
		LegacyFile: dir.LegacyLeads,
		Format:     repository.SheetFormatXLSX,
	}, logger)
	users := repository.NewUserRepository(dir.Users, logger)
	store := repository.NewDataStore(users, repository.NewCampaignRepository(dir.Campaigns, logger), shards)
	coordinator := NewStoreCoordinator(NewMutexLock(), logger)
	t.Cleanup(coordinator.Close)

	demo := testingutil.DemoUsers()
	require.NoError(t, store.SaveAllData(context.Background(), &models.Snapshot{Users: demo}))

	actor := func(u *models.User) models.Actor {
		return models.Actor{UserID: u.UserID, Username: u.Username, Role: u.Role}
	}
	return &testEnv{
		dir:         dir,
		users:       users,
		shards:      shards,
		store:       store,
		actionLog:   repository.NewActionLogRepository(dir.ActionLog),
		coordinator: coordinator,
		admin:       actor(demo[0]),
		ic101:       actor(demo[1]),
		ic201:       actor(demo[2]),
	}
}

func (e *testEnv) campaignFlow() AdminCampaignFlow {
	return NewAdminCampaignFlow(e.store, e.coordinator, e.actionLog, zap.NewNop())
}

func (e *testEnv) leadFlow() LeadFlow {
	return NewLeadFlow(e.store, e.coordinator, e.actionLog, zap.NewNop())
}

// seed stores campaigns and leads next to the demo users
func (e *testEnv) seed(t *testing.T, campaigns []*models.Campaign, leads []*models.Lead) {
	t.Helper()
	ctx := context.Background()
	snapshot, err := e.store.LoadAllData(ctx)
	require.NoError(t, err)
	snapshot.Campaigns = append(snapshot.Campaigns, campaigns...)
	snapshot.Leads = append(snapshot.Leads, leads...)
	require.NoError(t, e.store.SaveAllData(ctx, snapshot))
}

func (e *testEnv) load(t *testing.T) *models.Snapshot {
	t.Helper()
	snapshot, err := e.store.LoadAllData(context.Background())
	require.NoError(t, err)
	return snapshot
}

// auditRows returns the action log rows, header excluded
func (e *testEnv) auditRows(t *testing.T) [][]string {
	t.Helper()
	sheet, err := repository.ReadSheet(e.dir.ActionLog)
	if err != nil {
		return nil
	}
	return sheet.Rows
}

func leadByID(leads []*models.Lead, id string) *models.Lead {
	for _, l := range leads {
		if l.LeadID == id {
			return l
		}
	}
	return nil
}

// csvUpload renders rows as an uploaded CSV file
func csvUpload(t *testing.T, rows [][]string) LeadUploadFile {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(rows))
	return LeadUploadFile{Filename: "leads.csv", Content: &buf}
}
