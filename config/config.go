// Package config provides configuration management for the filesystem layer.
// It handles loading and validating configuration from YAML/JSON files and
// environment variables.
package config

// FilesConfig is the complete configuration of the filesystem layer.
type FilesConfig struct {
	// WatcherExcludes holds glob patterns stripped from every change stream
	// and merged into each watch registration.
	WatcherExcludes []string `koanf:"watcher_excludes"`

	// MaxFileSize is the largest content size in bytes a single read or
	// write will handle. Zero disables the limit.
	MaxFileSize int64 `koanf:"max_file_size" validate:"gte=0"`

	// MaxReadMemory caps the bytes buffered in memory by a chunked read.
	// Zero disables the limit.
	MaxReadMemory int64 `koanf:"max_read_memory" validate:"gte=0"`

	// UseTrash requests trash-routed deletion by default on providers
	// advertising trash support.
	UseTrash bool `koanf:"use_trash"`

	EventThrottle EventThrottleConfig `koanf:"event_throttle"`
	Log           LogConfig           `koanf:"log"`
}

// EventThrottleConfig tunes coalescing of the service-wide change stream.
type EventThrottleConfig struct {
	// EventsPerSecond is the maximum batch delivery rate. Zero or negative
	// disables throttling.
	EventsPerSecond float64 `koanf:"events_per_second"`
	Burst           int     `koanf:"burst" validate:"gte=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}
