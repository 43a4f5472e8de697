package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/domain/activity"
	infrastorage "github.com/marazt/strava-upload/pkg/infrastructure/storage"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// Config holds the configuration shared by the function and the CLI.
type Config struct {
	ProjectID     string
	EnablePublish bool
	Topic         string

	// Backup bucket layout
	BackupBucket     string
	MovescountPrefix string
	GarminPrefix     string
	LocalBackupDir   string
	ReportPrefix     string

	// Sync behaviour
	Source        activity.Source
	Lookback      time.Duration
	LedgerEnabled bool
	PollInterval  time.Duration

	// Strava account
	StravaAccessToken  string
	StravaRefreshToken string
	StravaClientID     string
	StravaClientSecret string
	StravaAPIURL       string
	StravaTokenURL     string

	// Notifications
	SendGridAPIKey string
	EmailFrom      string
	EmailTo        string

	// Observability
	SentryDSN         string
	SentryEnvironment string
	PushgatewayURL    string
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory, when present, seeds variables that are not already set.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = shared.ProjectID // Fallback
	}

	cfg := &Config{
		ProjectID:     projectID,
		EnablePublish: os.Getenv("ENABLE_PUBLISH") == "true",
		Topic:         envOr("SYNC_TOPIC", shared.TopicSyncCompleted),

		BackupBucket:     os.Getenv("GCS_BACKUP_BUCKET"),
		MovescountPrefix: envOr("MOVESCOUNT_BACKUP_DIR", "movescount"),
		GarminPrefix:     envOr("GARMIN_CONNECT_BACKUP_DIR", "garmin"),
		LocalBackupDir:   envOr("LOCAL_BACKUP_DIR", filepath.Join(os.TempDir(), "strava-upload")),
		ReportPrefix:     envOr("REPORT_PREFIX", "reports"),

		LedgerEnabled: os.Getenv("SYNC_LEDGER_ENABLED") == "true",

		StravaAccessToken:  os.Getenv("STRAVA_ACCESS_TOKEN"),
		StravaRefreshToken: os.Getenv("STRAVA_REFRESH_TOKEN"),
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaAPIURL:       envOr("STRAVA_API_URL", strava.DefaultBaseURL),
		StravaTokenURL:     envOr("STRAVA_TOKEN_URL", strava.DefaultTokenURL),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      os.Getenv("EMAIL_FROM"),
		EmailTo:        os.Getenv("EMAIL_TO"),

		SentryDSN:         os.Getenv("SENTRY_DSN"),
		SentryEnvironment: envOr("SENTRY_ENVIRONMENT", "production"),
		PushgatewayURL:    os.Getenv("PROMETHEUS_PUSHGATEWAY_URL"),
	}

	var errs []error

	// GCS_BACKUP_BUCKET may be a gs://bucket/root URI; the root prefixes every source prefix.
	if bucket, root, ok := infrastorage.ParseGCSURI(cfg.BackupBucket); ok {
		cfg.BackupBucket = bucket
		if root != "" {
			cfg.MovescountPrefix = path.Join(root, cfg.MovescountPrefix)
			cfg.GarminPrefix = path.Join(root, cfg.GarminPrefix)
		}
	}

	source, ok := activity.ParseSource(envOr("SYNC_SOURCE", string(activity.SourceMovescount)))
	if !ok {
		errs = append(errs, fmt.Errorf("SYNC_SOURCE: unknown source %q", os.Getenv("SYNC_SOURCE")))
	}
	cfg.Source = source

	if v := os.Getenv("SYNC_LOOKBACK_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			errs = append(errs, fmt.Errorf("SYNC_LOOKBACK_DAYS: invalid value %q", v))
		}
		cfg.Lookback = time.Duration(days) * 24 * time.Hour
	}

	if v := os.Getenv("STRAVA_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("STRAVA_POLL_INTERVAL: invalid duration %q", v))
		}
		cfg.PollInterval = d
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prefixes maps each source to its object prefix in the backup bucket.
func (c *Config) Prefixes() map[activity.Source]string {
	return map[activity.Source]string{
		activity.SourceMovescount:    c.MovescountPrefix,
		activity.SourceGarminConnect: c.GarminPrefix,
	}
}

// Validate checks the settings a sync run cannot do without.
func (c *Config) Validate() error {
	var missing []string
	if c.BackupBucket == "" {
		missing = append(missing, "GCS_BACKUP_BUCKET")
	}
	if c.StravaAccessToken == "" && c.StravaRefreshToken == "" && !c.LedgerEnabled {
		missing = append(missing, "STRAVA_ACCESS_TOKEN or STRAVA_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
