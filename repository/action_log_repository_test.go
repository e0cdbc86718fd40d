package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amirphl/lead-connect/models"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "action_logs.csv")
	repo := NewActionLogRepository(path)
	ctx := context.Background()

	entries := []*models.ActionLogEntry{
		{
			LogID:           uuid.New().String(),
			UserID:          "u-1",
			ActionType:      models.ActionTypeCreate,
			TableName:       models.TableCampaigns,
			RecordID:        "CAMP-001",
			NewValues:       json.RawMessage(`{"campaign_name":"Tech IPO, 2024"}`),
			ActionTimestamp: testingutil.FixedTime,
		},
		{
			LogID:           uuid.New().String(),
			UserID:          "u-1",
			ActionType:      models.ActionTypeImport,
			TableName:       models.TableLeads,
			RecordID:        "CAMP-001",
			NewValues:       json.RawMessage(`{"count":2}`),
			ActionTimestamp: testingutil.FixedTime,
		},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(ctx, e))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), utf8BOM), "file starts with BOM")
	assert.Equal(t, 1, strings.Count(string(raw), utf8BOM), "header written once")

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.ActionLogColumns, records[0])
	assert.Equal(t, []string{
		entries[0].LogID, "u-1", "CREATE", "campaigns", "CAMP-001",
		"", `{"campaign_name":"Tech IPO, 2024"}`, "2024-01-15 09:30:00",
	}, records[1])
	assert.Equal(t, "IMPORT", records[2][2])
}

func TestActionLogAppendUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	repo := NewActionLogRepository(filepath.Join(blocker, "action_logs.csv"))
	err := repo.Append(context.Background(), &models.ActionLogEntry{LogID: "x", ActionTimestamp: testingutil.FixedTime})
	assert.Error(t, err)
}
