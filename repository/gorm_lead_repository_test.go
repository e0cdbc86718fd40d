package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/lead-connect/models"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGormLeadRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewGormLeadRepository(testDB.DB, zap.NewNop())
		ctx := testingutil.CreateTestContext()
		require.NoError(t, repo.Migrate(ctx))

		leads := append(testingutil.NewLeads(2, "CAMP-001", "ic101"), testingutil.NewLeads(2, "CAMP-002", "ic201")...)
		leads[1].Status = models.LeadStatusContacted
		leads[1].LastContactDate = utils.ToPtr(testingutil.FixedTime)

		t.Run("RoundTrip", func(t *testing.T) {
			require.NoError(t, repo.SaveAll(ctx, leads))

			loaded, err := repo.LoadAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(leads, loaded))
		})

		t.Run("ReplaceInTransaction", func(t *testing.T) {
			err := WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				return repo.SaveAll(txCtx, leads[:1])
			})
			require.NoError(t, err)

			loaded, err := repo.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			assert.Equal(t, leads[0].LeadID, loaded[0].LeadID)
		})

		t.Run("RollbackKeepsRows", func(t *testing.T) {
			err := WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				if err := repo.SaveAll(txCtx, nil); err != nil {
					return err
				}
				return errors.New("abort")
			})
			require.EqualError(t, err, "abort")

			loaded, err := repo.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			assert.Equal(t, leads[0].LeadID, loaded[0].LeadID)
		})

		t.Run("EmptyTable", func(t *testing.T) {
			require.NoError(t, repo.SaveAll(ctx, nil))
			loaded, err := repo.LoadAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, loaded)
		})

		return nil
	})
	if errors.Is(err, testingutil.ErrNoTestDB) {
		t.Skip("TEST_DB_HOST not set, skipping postgres lead repository test")
	}
	require.NoError(t, err)
}
