package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wwsinagogogo/theia/config"
	"github.com/wwsinagogogo/theia/filesystem"
)

var rootCmd = &cobra.Command{
	Use:   "theiafs",
	Short: "Tooling for the theia filesystem layer",
	Long: `theiafs bundles operational helpers for the theia filesystem layer:
configuration validation and capability inspection.`,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the filesystem layer configuration and display the loaded settings",
	RunE:  validateConfig,
}

var capsCmd = &cobra.Command{
	Use:   "caps <bitset>",
	Short: "Decode a provider capability bitset",
	Args:  cobra.ExactArgs(1),
	RunE:  decodeCaps,
}

var configFilePath string

func main() {
	validateCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd, capsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// validateConfig loads the configuration and displays the effective settings.
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadFromFile(configFilePath)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Watcher Excludes: %v\n", cfg.WatcherExcludes)
	fmt.Printf("Max File Size: %d\n", cfg.MaxFileSize)
	fmt.Printf("Max Read Memory: %d\n", cfg.MaxReadMemory)
	fmt.Printf("Use Trash: %t\n", cfg.UseTrash)
	if cfg.EventThrottle.EventsPerSecond > 0 {
		fmt.Printf("Event Throttle: %.1f/s (burst %d)\n",
			cfg.EventThrottle.EventsPerSecond, cfg.EventThrottle.Burst)
	} else {
		fmt.Println("Event Throttle: disabled")
	}
	fmt.Printf("Log Level: %s\n", cfg.Log.Level)
	fmt.Printf("Log Format: %s\n", cfg.Log.Format)

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Configuration loaded", zap.Int("watcher_excludes", len(cfg.WatcherExcludes)))

	return nil
}

// decodeCaps prints the capability names set in a numeric bitset, as
// reported by a provider.
func decodeCaps(cmd *cobra.Command, args []string) error {
	var bits uint32
	if _, err := fmt.Sscanf(args[0], "%d", &bits); err != nil {
		return fmt.Errorf("invalid bitset %q: %w", args[0], err)
	}
	fmt.Println(filesystem.Capabilities(bits).String())
	return nil
}

// initializeLogger creates a zap logger based on configuration.
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
