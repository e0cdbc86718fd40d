package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/amirphl/lead-connect/models"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteLeadRepository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLiteLeadRepository(db, zap.NewNop())
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLiteLeadRepository(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		leads, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, leads)
	})

	leads := append(testingutil.NewLeads(3, "CAMP-001", "ic101"), testingutil.NewLeads(2, "CAMP-002", "ic201")...)
	leads[2].Status = models.LeadStatusDealClosed
	leads[2].LastContactDate = utils.ToPtr(testingutil.FixedTime)
	leads[2].Notes = utils.ToPtr("signed")

	t.Run("round trip keeps order", func(t *testing.T) {
		require.NoError(t, repo.SaveAll(ctx, leads))

		loaded, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(leads, loaded))
	})

	t.Run("save replaces and drops orphans", func(t *testing.T) {
		orphan := testingutil.NewLead("CAMP-001", "ic101")
		orphan.CampaignID = nil
		next := []*models.Lead{leads[0], orphan}

		require.NoError(t, repo.SaveAll(ctx, next))
		loaded, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, leads[0].LeadID, loaded[0].LeadID)
	})

	t.Run("large batch spans insert chunks", func(t *testing.T) {
		many := testingutil.NewLeads(sqliteInsertChunk*2+7, "CAMP-003", "ic101")
		require.NoError(t, repo.SaveAll(ctx, many))

		loaded, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, len(many))
		assert.Equal(t, many[len(many)-1].LeadID, loaded[len(loaded)-1].LeadID)
	})
}
