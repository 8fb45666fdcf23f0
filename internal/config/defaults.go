package config

const (
	defaultLogDir           = "~/.local/share/comictag/logs"
	defaultStateDir         = "~/.local/share/comictag"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultRenameTemplate   = "%series% v%volume% #%issue% (of %issuecount%) (%year%)"
	defaultIssuePadding     = 3
	defaultHammingDistance  = 10
	defaultHashCacheEnabled = true
	defaultHashCacheFile    = "hashes.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Rename: Rename{
			Template:     defaultRenameTemplate,
			IssuePadding: defaultIssuePadding,
			SmartCleanup: true,
		},
		Duplicates: Duplicates{
			HammingDistance: defaultHammingDistance,
			UpdateMetadata:  true,
			Progress:        true,
		},
		HashCache: HashCache{
			Enabled: defaultHashCacheEnabled,
		},
		Metadata: Metadata{
			CalcPageSizes: true,
		},
	}
}
