package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []ShardChange
}

func (r *changeRecorder) record(c ShardChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *changeRecorder) files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.changes {
		out = append(out, c.File)
	}
	return out
}

func TestShardWatcherReportsExternalWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	store, dir := newTestShardStore(t, SheetFormatCSV)
	rec := &changeRecorder{}
	watcher, err := NewShardWatcher(store, time.Second, rec.record, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	path := filepath.Join(dir.Leads, "leads_CAMP-777.csv")
	require.NoError(t, os.WriteFile(path, []byte("lead_id,campaign_id\nL1,CAMP-777\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir.Leads, "readme.txt"), []byte("ignored"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.files()) > 0
	}, 5*time.Second, 20*time.Millisecond)
	for _, f := range rec.files() {
		assert.Equal(t, "leads_CAMP-777.csv", f)
	}
}

func TestShardWatcherIgnoresOwnWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	store, _ := newTestShardStore(t, SheetFormatCSV)
	rec := &changeRecorder{}
	watcher, err := NewShardWatcher(store, time.Minute, rec.record, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	require.NoError(t, store.SaveAll(context.Background(), testingutil.NewLeads(2, "CAMP-001", "ic101")))

	assert.Never(t, func() bool {
		return len(rec.files()) > 0
	}, 300*time.Millisecond, 20*time.Millisecond)
}

func TestShardWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	store, _ := newTestShardStore(t, SheetFormatCSV)
	watcher, err := NewShardWatcher(store, time.Second, nil, nil)
	require.NoError(t, err)
	watcher.Stop()
}
