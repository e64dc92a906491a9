package constants

import "time"

var CacheTTL = struct {
	Report time.Duration
}{
	Report: 3 * time.Hour, // dashboard refresh window
}

var CacheKeys = struct {
	ReportPrefix string
}{
	ReportPrefix: "ytdata:report",
}

var PaginationConfig = struct {
	PageSize        int64
	DefaultMaxPages int
}{
	PageSize:        50,   // playlistItems.list maxResults upper bound
	DefaultMaxPages: 2000, // 100k items
}

var BatchConfig = struct {
	MaxIDsPerCall      int
	DefaultConcurrency int
}{
	MaxIDsPerCall:      50, // videos.list id parameter limit
	DefaultConcurrency: 1,
}

var QuotaConfig = struct {
	DailyLimit    int
	SafetyMargin  int
	ListCallCost  int
	ResetLocation string
}{
	DailyLimit:    10000,
	SafetyMargin:  500,
	ListCallCost:  1, // videos/channels/playlistItems.list
	ResetLocation: "America/Los_Angeles",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
	IOTimeout    time.Duration
	PoolSize     int
	ScanCount    int64
}{
	ReadyTimeout: 5 * time.Second,
	IOTimeout:    3 * time.Second,
	PoolSize:     4,
	ScanCount:    200,
}

var StringLimits = struct {
	TableTitle       int
	TableDescription int
}{
	TableTitle:       60,
	TableDescription: 80,
}

var PostgresPool = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}{
	MaxOpenConns:    4,
	MaxIdleConns:    1,
	ConnMaxLifetime: 10 * time.Minute,
	PingTimeout:     5 * time.Second,
}
