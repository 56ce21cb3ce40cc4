package database

// Config holds configuration for the market database.
type Config struct {
	// Path is the local embedded database file.
	Path string `mapstructure:"path" default:"market.db"`
	// ReplicaURL is the remote replica connection URL (libsql://...).
	// Empty disables replication; the database is then purely local.
	ReplicaURL string `mapstructure:"replica_url" default:""`
	// AuthToken authenticates against the remote replica.
	AuthToken string `mapstructure:"auth_token" default:""`
	// CachePath is the standalone conditional-request cache file. It is
	// kept outside the replicated database on purpose: a cloud-to-local
	// sync must not wipe it.
	CachePath string `mapstructure:"cache_path" default:"esi_cache.db"`
	// StatsTable is the table whose watermark column is compared between
	// local and remote to detect staleness.
	StatsTable string `mapstructure:"stats_table" default:"marketstats"`
	// WatermarkColumn is the monotonic column used for the comparison.
	WatermarkColumn string `mapstructure:"watermark_column" default:"last_update"`
}

// metadataPath returns the replica metadata sidecar for the database file.
func (c Config) metadataPath() string {
	return c.Path + "-info"
}
