package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Output modes.
const (
	ModeJSON     = "json"
	ModeDatabase = "database"
)

// SQLite driver names as registered with database/sql.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// Defaults.
const (
	DefaultMode              = ModeJSON
	DefaultDriver            = DriverModernc
	DefaultBatchSize         = 1000
	DefaultProgressTicks     = 1800
	DefaultMemoryLogInterval = 30 * time.Second
	DefaultMemoryLimit       = ""
	DefaultGzipOutput        = false
)

// Config is the top-level configuration of the replay parser.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Progress ProgressConfig `mapstructure:"progress"`
	Memory   MemoryConfig   `mapstructure:"memory"`
}

// OutputConfig selects where the timeline goes.
type OutputConfig struct {
	Mode string `mapstructure:"mode"`
	// Gzip compresses JSON output files.
	Gzip bool `mapstructure:"gzip"`
}

// DatabaseConfig holds SQLite storage settings.
type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	BatchSize int    `mapstructure:"batch_size"`
}

// ProgressConfig controls progress reporting.
type ProgressConfig struct {
	// IntervalTicks is the number of engine ticks between progress lines. Zero disables them.
	IntervalTicks int `mapstructure:"interval_ticks"`
}

// MemoryConfig holds memory reporting and limit settings.
type MemoryConfig struct {
	LogInterval time.Duration `mapstructure:"log_interval"`
	// Limit is a soft memory limit such as "2GiB". Empty means no limit.
	Limit string `mapstructure:"limit"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMode indicates an unknown output mode.
	ErrInvalidMode = errors.New("output.mode must be json or database")
	// ErrInvalidDriver indicates an unknown SQLite driver.
	ErrInvalidDriver = errors.New("database.driver must be sqlite or sqlite3")
	// ErrInvalidBatchSize indicates the batch size is not positive.
	ErrInvalidBatchSize = errors.New("database.batch_size must be positive")
	// ErrInvalidProgressTicks indicates the progress interval is negative.
	ErrInvalidProgressTicks = errors.New("progress.interval_ticks must be non-negative")
	// ErrInvalidMemoryLogInterval indicates the memory log interval is negative.
	ErrInvalidMemoryLogInterval = errors.New("memory.log_interval must be non-negative")
	// ErrInvalidMemoryLimit indicates the memory limit is not a byte size.
	ErrInvalidMemoryLimit = errors.New("memory.limit must be a byte size such as 2GiB")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	switch c.Output.Mode {
	case ModeJSON, ModeDatabase:
	default:
		return ErrInvalidMode
	}

	switch c.Database.Driver {
	case DriverModernc, DriverCgo:
	default:
		return ErrInvalidDriver
	}

	if c.Database.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Progress.IntervalTicks < 0 {
		return ErrInvalidProgressTicks
	}

	if c.Memory.LogInterval < 0 {
		return ErrInvalidMemoryLogInterval
	}

	if _, err := c.MemoryLimitBytes(); err != nil {
		return err
	}

	return nil
}

// MemoryLimitBytes parses Memory.Limit. It returns 0 when no limit is set.
func (c *Config) MemoryLimitBytes() (uint64, error) {
	if c.Memory.Limit == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Memory.Limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMemoryLimit, err)
	}
	return n, nil
}
