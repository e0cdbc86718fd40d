package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidCampaignID = errors.New("campaign id cannot be used as a shard name")

var _ CampaignAwareLeadRepository = (*ShardStore)(nil)

// ShardStoreConfig locates the leads directory and the optional legacy single-file table
type ShardStoreConfig struct {
	Dir         string
	LegacyFile  string
	Format      SheetFormat
	ReadWorkers int
}

// SkippedFile is a shard that could not be parsed during a load
type SkippedFile struct {
	Name string
	Err  error
}

// LoadReport describes where the rows of a load came from
type LoadReport struct {
	Files        []string
	SkippedFiles []SkippedFile
	FromLegacy   bool
}

// SaveReport describes the file changes made by a save
type SaveReport struct {
	Written        []string
	Removed        []string
	Preserved      []string
	DroppedOrphans int
	LegacyRetired  bool
}

// ShardStore keeps one tabular file per campaign under a directory and presents them as one table
type ShardStore struct {
	cfg      ShardStoreConfig
	logger   *zap.Logger
	activity writeActivity
}

// NewShardStore creates a shard store. A zero Format means xlsx.
func NewShardStore(cfg ShardStoreConfig, logger *zap.Logger) *ShardStore {
	if cfg.Format == "" {
		cfg.Format = SheetFormatXLSX
	}
	if cfg.ReadWorkers <= 0 {
		cfg.ReadWorkers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShardStore{cfg: cfg, logger: logger}
}

// Dir returns the leads directory
func (s *ShardStore) Dir() string {
	return s.cfg.Dir
}

// ShardPath returns the file a campaign's leads are written to
func (s *ShardStore) ShardPath(campaignID string) string {
	return filepath.Join(s.cfg.Dir, utils.LeadShardPrefix+campaignID+s.cfg.Format.Ext())
}

// LoadAll implements LeadRepository
func (s *ShardStore) LoadAll(ctx context.Context) ([]*models.Lead, error) {
	leads, _, err := s.LoadAllWithReport(ctx)
	return leads, err
}

// LoadAllWithReport merges every shard into one table. Unparsable shards are skipped and reported.
// The legacy file is read only while the directory holds no shard at all.
func (s *ShardStore) LoadAllWithReport(ctx context.Context) ([]*models.Lead, *LoadReport, error) {
	start := time.Now()
	defer func() {
		leadStoreDuration.WithLabelValues("shards", "load").Observe(time.Since(start).Seconds())
	}()

	names, err := s.listShardFiles()
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(s.cfg.Dir, name))
	}
	if len(paths) == 0 && s.cfg.LegacyFile != "" && fileExists(s.cfg.LegacyFile) {
		paths = append(paths, s.cfg.LegacyFile)
		report.FromLegacy = true
	}

	type slot struct {
		leads []*models.Lead
		err   error
	}
	slots := make([]slot, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ReadWorkers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i].leads, slots[i].err = readShard(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []*models.Lead
	for i, sl := range slots {
		name := filepath.Base(paths[i])
		if sl.err != nil {
			report.SkippedFiles = append(report.SkippedFiles, SkippedFile{Name: name, Err: sl.err})
			shardsSkippedTotal.Inc()
			s.logger.Warn("Skipping unreadable lead shard",
				zap.String("file", name),
				zap.Error(sl.err),
			)
			continue
		}
		report.Files = append(report.Files, name)
		all = append(all, sl.leads...)
	}

	return all, report, nil
}

// SaveAll implements LeadRepository
func (s *ShardStore) SaveAll(ctx context.Context, leads []*models.Lead) error {
	_, err := s.SaveAllWithReport(ctx, leads)
	return err
}

// SaveAllForCampaigns implements CampaignAwareLeadRepository. Unreadable shards of campaigns
// outside campaignIDs are removed with the readable ones.
func (s *ShardStore) SaveAllForCampaigns(ctx context.Context, leads []*models.Lead, campaignIDs []string) error {
	live := make(map[string]bool, len(campaignIDs))
	for _, cid := range campaignIDs {
		live[cid] = true
	}
	_, err := s.save(ctx, leads, live)
	return err
}

// SaveAllWithReport rewrites one shard per campaign present in leads, then removes every other shard
// except the ones that cannot be parsed: their rows never reached the caller, so they are kept.
// Rows without a campaign id cannot be routed to a shard and are dropped and counted.
// The legacy file, when present, is renamed so it is never read again.
func (s *ShardStore) SaveAllWithReport(ctx context.Context, leads []*models.Lead) (*SaveReport, error) {
	return s.save(ctx, leads, nil)
}

// save writes leads. live, when non-nil, holds the campaigns that still exist.
func (s *ShardStore) save(ctx context.Context, leads []*models.Lead, live map[string]bool) (*SaveReport, error) {
	start := time.Now()
	s.activity.begin()
	defer func() {
		s.activity.end()
		leadStoreDuration.WithLabelValues("shards", "save").Observe(time.Since(start).Seconds())
	}()

	var order []string
	groups := make(map[string][]*models.Lead)
	report := &SaveReport{}
	for _, l := range leads {
		if l == nil {
			continue
		}
		if l.CampaignID == nil || strings.TrimSpace(*l.CampaignID) == "" {
			report.DroppedOrphans++
			continue
		}
		cid := *l.CampaignID
		if err := ValidateCampaignID(cid); err != nil {
			return nil, err
		}
		if _, seen := groups[cid]; !seen {
			order = append(order, cid)
		}
		groups[cid] = append(groups[cid], l)
	}

	if report.DroppedOrphans > 0 {
		orphanLeadsDroppedTotal.Add(float64(report.DroppedOrphans))
		s.logger.Warn("Dropping leads without campaign id",
			zap.Int("count", report.DroppedOrphans),
		)
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create leads directory: %w", err)
	}

	keep := make(map[string]bool, len(order))
	for _, cid := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.ShardPath(cid)
		if err := WriteSheet(path, LeadCodec.EncodeAll(groups[cid])); err != nil {
			return nil, fmt.Errorf("failed to write shard for campaign %s: %w", cid, err)
		}
		keep[filepath.Base(path)] = true
		report.Written = append(report.Written, filepath.Base(path))
	}

	var errs []error
	names, err := s.listShardFiles()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if !strings.HasPrefix(name, utils.LeadShardPrefix) || keep[name] {
			continue
		}
		path := filepath.Join(s.cfg.Dir, name)
		cid := shardCampaignID(name)
		if live == nil || live[cid] {
			if _, readErr := readShard(path); readErr != nil {
				shardsPreservedTotal.Inc()
				report.Preserved = append(report.Preserved, name)
				s.logger.Warn("Keeping unreadable lead shard of an existing campaign",
					zap.String("file", name),
					zap.String("campaign_id", cid),
					zap.Error(readErr),
				)
				continue
			}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Error("Failed to remove stale lead shard", zap.String("file", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to remove stale shard %s: %w", name, err))
			continue
		}
		shardsRemovedTotal.Inc()
		report.Removed = append(report.Removed, name)
	}

	if s.cfg.LegacyFile != "" && fileExists(s.cfg.LegacyFile) {
		retired := s.cfg.LegacyFile + utils.MigratedSuffix
		if err := os.Rename(s.cfg.LegacyFile, retired); err != nil {
			s.logger.Error("Failed to retire legacy leads file", zap.String("file", s.cfg.LegacyFile), zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to retire legacy leads file: %w", err))
		} else {
			report.LegacyRetired = true
			s.logger.Info("Retired legacy leads file", zap.String("renamed_to", retired))
		}
	}

	shardsOnDisk.Set(float64(len(report.Written) + len(report.Preserved)))
	s.logger.Debug("Saved lead shards",
		zap.Int("written", len(report.Written)),
		zap.Int("removed", len(report.Removed)),
		zap.Int("preserved", len(report.Preserved)),
	)

	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// RecentlyWrote reports whether this store is writing or finished a write within grace
func (s *ShardStore) RecentlyWrote(grace time.Duration) bool {
	return s.activity.recent(time.Now(), grace)
}

// ValidateCampaignID rejects ids that would escape the leads directory or hide the shard
func ValidateCampaignID(cid string) error {
	switch {
	case strings.TrimSpace(cid) == "",
		strings.ContainsAny(cid, `/\`+"\x00"),
		strings.Contains(cid, ".."),
		strings.HasPrefix(cid, "."):
		return fmt.Errorf("%w: %q", ErrInvalidCampaignID, cid)
	}
	return nil
}

// readShard parses one shard file
func readShard(path string) ([]*models.Lead, error) {
	sheet, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	leads, err := LeadCodec.DecodeAll(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return leads, nil
}

// shardCampaignID recovers the campaign id from a shard file name
func shardCampaignID(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, utils.LeadShardPrefix), filepath.Ext(name))
}

// listShardFiles returns visible .xlsx and .csv file names in the leads directory, sorted
func (s *ShardStore) listShardFiles() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list leads directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if _, err := FormatOf(name); err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeActivity tracks in-flight and recently finished saves
type writeActivity struct {
	inFlight atomic.Int32
	lastDone atomic.Int64
}

func (a *writeActivity) begin() {
	a.inFlight.Add(1)
}

func (a *writeActivity) end() {
	a.lastDone.Store(time.Now().UnixNano())
	a.inFlight.Add(-1)
}

func (a *writeActivity) recent(now time.Time, grace time.Duration) bool {
	if a.inFlight.Load() > 0 {
		return true
	}
	last := a.lastDone.Load()
	return last != 0 && now.Sub(time.Unix(0, last)) <= grace
}
