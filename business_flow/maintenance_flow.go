package businessflow

import (
	"context"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DemoAccount is a user created by Seed on an empty users table
type DemoAccount struct {
	Username string
	Password string
	FullName string
	Role     models.UserRole
	Hub      string
}

// DemoAccounts are the accounts a fresh installation starts with
var DemoAccounts = []DemoAccount{
	{Username: "admin", Password: "admin123", FullName: "System Administrator", Role: models.UserRoleAdmin},
	{Username: "ic101", Password: "password1", FullName: "IC 101", Role: models.UserRoleIC, Hub: "Hub A"},
	{Username: "ic201", Password: "password4", FullName: "IC 201", Role: models.UserRoleIC, Hub: "Hub B"},
}

// MaintenanceFlow holds operator tasks run from the command line
type MaintenanceFlow interface {
	Seed(ctx context.Context) (int, error)
	MigrateStorage(ctx context.Context) error
}

// MaintenanceFlowImpl implements the maintenance flow
type MaintenanceFlowImpl struct {
	store       repository.DataStore
	coordinator *StoreCoordinator
	logger      *zap.Logger
}

// NewMaintenanceFlow creates a new maintenance flow
func NewMaintenanceFlow(store repository.DataStore, coordinator *StoreCoordinator, logger *zap.Logger) MaintenanceFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceFlowImpl{store: store, coordinator: coordinator, logger: logger}
}

// Seed adds the demo accounts when no user exists yet and returns how many were added
func (f *MaintenanceFlowImpl) Seed(ctx context.Context) (int, error) {
	added := 0
	err := f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}
		if len(snapshot.Users) > 0 {
			return nil
		}

		now := utils.TruncateToSecond(utils.UTCNow())
		for _, acc := range DemoAccounts {
			hash, err := HashPassword(acc.Password)
			if err != nil {
				return err
			}
			snapshot.Users = append(snapshot.Users, &models.User{
				UserID:       uuid.New().String(),
				Username:     acc.Username,
				PasswordHash: hash,
				FullName:     utils.NilIfEmpty(acc.FullName),
				Role:         acc.Role,
				HubName:      utils.NilIfEmpty(acc.Hub),
				CreatedAt:    utils.ToPtr(now),
			})
		}
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}
		added = len(DemoAccounts)
		return nil
	})
	if err != nil {
		return 0, NewBusinessError("SEED_FAILED", "Failed to seed users", err)
	}
	f.logger.Info("seed finished", zap.Int("users_added", added))
	return added, nil
}

// MigrateStorage rewrites every table once. A legacy single leads file is split into shards and retired.
func (f *MaintenanceFlowImpl) MigrateStorage(ctx context.Context) error {
	err := f.coordinator.Do(ctx, func(ctx context.Context) error {
		snapshot, err := f.store.LoadAllData(ctx)
		if err != nil {
			return err
		}
		if err := f.store.SaveAllData(ctx, snapshot); err != nil {
			return err
		}
		f.logger.Info("storage migrated",
			zap.Int("users", len(snapshot.Users)),
			zap.Int("campaigns", len(snapshot.Campaigns)),
			zap.Int("leads", len(snapshot.Leads)))
		return nil
	})
	if err != nil {
		return NewBusinessError("MIGRATE_FAILED", "Failed to migrate storage", err)
	}
	return nil
}
