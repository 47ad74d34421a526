package config

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() FilesConfig {
	return FilesConfig{
		WatcherExcludes: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/.DS_Store",
		},
		MaxFileSize:   2 << 30,  // 2 GiB
		MaxReadMemory: 256 << 20, // 256 MiB
		UseTrash:      true,
		EventThrottle: EventThrottleConfig{
			EventsPerSecond: 0, // throttling off unless configured
			Burst:           8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
