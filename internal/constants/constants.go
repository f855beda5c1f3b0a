package constants

import "time"

const (
	// Each month bucket fetch is bounded on its own so one hanging
	// archive cannot stall the whole aggregation.
	ArchiveFetchTimeout = 10 * time.Second
	ProfileFetchTimeout = 10 * time.Second
	DatabaseTimeout     = 5 * time.Second
	RequestTimeout      = 30 * time.Second
)

const (
	PlayerRefreshTTL = 6 * time.Hour
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
