package utils

import (
	"time"
)

// Token constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (12 hours, one working shift)
	AccessTokenTTL = 12 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Storage constants
const (
	// LeadShardPrefix prefixes every per-campaign lead file name
	LeadShardPrefix = "leads_"

	// MigratedSuffix is appended to the legacy leads file once its rows live in shards
	MigratedSuffix = ".migrated"

	// CustomerCodeLength is how many trailing lead id characters form the customer code
	CustomerCodeLength = 8
)
