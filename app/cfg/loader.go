package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/claims.db" description:"SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for follow-up processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for write endpoints (optional)"`
	ScheduleFile      string `long:"schedule-file" env:"SCHEDULE_FILE" description:"YAML file with the follow-up cadence policy (optional)"`
	CacheTTL          int    `long:"cache-ttl" env:"CACHE_TTL" default:"60" description:"Seconds to cache countdown and stats projections"`

	// Calendar configuration
	ReferenceOffset int    `long:"reference-utc-offset" env:"REFERENCE_UTC_OFFSET" default:"-5" description:"Fixed UTC offset in hours used to pin due dates"`
	RunDate         string `long:"run-date" env:"RUN_DATE" description:"Override today's date (YYYY-MM-DD) for scheduling"`

	// Verification service
	VerifierURL    string  `long:"verifier-url" env:"VERIFIER_URL" description:"Base URL of the external verification service (processing disabled when empty)"`
	VerifierAPIKey string  `long:"verifier-api-key" env:"VERIFIER_API_KEY" description:"Bearer token for the verification service"`
	VerifierRate   float64 `long:"verifier-rate" env:"VERIFIER_RATE" default:"1" description:"Maximum verification requests per second"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Claim Tracker/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		ScheduleFile:      raw.ScheduleFile,
		CacheTTL:          raw.CacheTTL,
		ReferenceOffset:   raw.ReferenceOffset,
		RunDate:           raw.RunDate,
		VerifierURL:       raw.VerifierURL,
		VerifierAPIKey:    raw.VerifierAPIKey,
		VerifierRate:      raw.VerifierRate,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// ReferenceZone is the fixed-offset zone that due dates are pinned to. It
// never observes daylight saving time.
func (c *Cfg) ReferenceZone() *time.Location {
	name := fmt.Sprintf("UTC%+03d:00", c.ReferenceOffset)
	return time.FixedZone(name, c.ReferenceOffset*3600)
}

func (c *Cfg) validate() error {
	if c.ReferenceOffset < -12 || c.ReferenceOffset > 14 {
		return fmt.Errorf("reference UTC offset out of range: %d", c.ReferenceOffset)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.SchedulerInterval < 1 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if c.RunDate != "" {
		if _, err := time.Parse(time.DateOnly, c.RunDate); err != nil {
			return fmt.Errorf("invalid run date %q: %w", c.RunDate, err)
		}
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
