package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/amirphl/lead-connect/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeed(t *testing.T) {
	dir := testingutil.NewDataDir(t.TempDir())
	logger := zap.NewNop()
	users := repository.NewUserRepository(dir.Users, logger)
	store := repository.NewDataStore(users, repository.NewCampaignRepository(dir.Campaigns, logger),
		repository.NewShardStore(repository.ShardStoreConfig{Dir: dir.Leads, Format: repository.SheetFormatXLSX}, logger))
	coordinator := NewStoreCoordinator(NewMutexLock(), logger)
	t.Cleanup(coordinator.Close)

	flow := NewMaintenanceFlow(store, coordinator, logger)

	added, err := flow.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(DemoAccounts), added)

	loaded, err := users.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, len(DemoAccounts))
	for i, acc := range DemoAccounts {
		assert.Equal(t, acc.Username, loaded[i].Username)
		assert.Equal(t, acc.Role, loaded[i].Role)
		assert.True(t, CheckPassword(loaded[i].PasswordHash, acc.Password))
	}

	// a second run leaves existing users alone
	added, err = flow.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestMigrateStorageRetiresLegacyFile(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []*models.Campaign{
		testingutil.NewCampaign("CAMP-001", "Tech IPO", models.CampaignTypeIPO),
		testingutil.NewCampaign("CAMP-002", "Bond Week", models.CampaignTypeBond),
	}, nil)

	legacy := append(testingutil.NewLeads(2, "CAMP-001", "ic101"), testingutil.NewLeads(1, "CAMP-002", "ic201")...)
	require.NoError(t, repository.WriteSheet(env.dir.LegacyLeads, repository.LeadCodec.EncodeAll(legacy)))

	flow := NewMaintenanceFlow(env.store, env.coordinator, zap.NewNop())
	require.NoError(t, flow.MigrateStorage(context.Background()))

	assert.FileExists(t, env.shards.ShardPath("CAMP-001"))
	assert.FileExists(t, env.shards.ShardPath("CAMP-002"))
	assert.NoFileExists(t, env.dir.LegacyLeads)
	assert.FileExists(t, env.dir.LegacyLeads+utils.MigratedSuffix)

	got := testingutil.SortLeads(env.load(t).Leads)
	require.Len(t, got, 3)
	for _, l := range testingutil.SortLeads(legacy) {
		assert.NotNil(t, leadByID(got, l.LeadID))
	}
}
