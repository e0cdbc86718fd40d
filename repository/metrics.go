package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Shard files that could not be parsed during a load
	shardsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadconnect_shards_skipped_total",
			Help: "Number of lead shard files skipped because they could not be parsed",
		},
	)

	// Lead rows dropped on save because they carry no campaign id
	orphanLeadsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadconnect_orphan_leads_dropped_total",
			Help: "Number of leads without a campaign id dropped during save",
		},
	)

	// Shard files deleted because their campaign no longer has leads
	shardsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadconnect_shards_removed_total",
			Help: "Number of stale lead shard files removed during save",
		},
	)

	// Unreadable shards a save left in place because their campaign still exists
	shardsPreservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadconnect_shards_preserved_total",
			Help: "Number of unreadable lead shard files kept during save",
		},
	)

	// Shards currently on disk after the last save
	shardsOnDisk = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadconnect_shards",
			Help: "Number of lead shard files on disk after the last save",
		},
	)

	// Writes to the leads directory not made by this process
	externalShardWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadconnect_external_shard_writes_total",
			Help: "File system events on lead shards that did not originate from this process",
		},
		[]string{"op"},
	)

	// Duration of full-table loads and saves partitioned by backend and operation
	leadStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadconnect_lead_store_duration_seconds",
			Help:    "Latency of whole-table lead loads and saves",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
)
