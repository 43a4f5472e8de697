package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/backup"
	"github.com/marazt/strava-upload/pkg/infrastructure/database"
	"github.com/marazt/strava-upload/pkg/infrastructure/notifications"
	"github.com/marazt/strava-upload/pkg/infrastructure/oauth"
	infrapubsub "github.com/marazt/strava-upload/pkg/infrastructure/pubsub"
	"github.com/marazt/strava-upload/pkg/infrastructure/sentry"
	infrastorage "github.com/marazt/strava-upload/pkg/infrastructure/storage"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
	"github.com/marazt/strava-upload/pkg/stravasync"
	"github.com/marazt/strava-upload/pkg/syncrun"
)

const stravaHTTPTimeout = 60 * time.Second

// Service holds initialized dependencies
type Service struct {
	// DB is nil unless the sync ledger is enabled.
	DB       shared.Database
	Store    shared.BlobStore
	Pub      shared.Publisher
	Notifier shared.Notifier
	Strava   *strava.Client
	Config   *Config
	Logger   *slog.Logger
}

// GetSlogHandlerOptions returns standard handler options for GCP
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Map standard keys to Cloud Logging keys
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

// WithAttrs implements slog.Handler
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

// Handle implements slog.Handler
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component

	// A record-level component wins over the handler's
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false // stop
		}
		return true
	})

	if comp != "" {
		newRecord := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
		// component stays in the structured payload as well
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// LevelFromEnv reads LOG_LEVEL (debug|info|warn|error), defaulting to info.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger configures structured logging with Cloud Logging compatible keys
func InitLogger() {
	opts := GetSlogHandlerOptions(LevelFromEnv())
	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(&ComponentHandler{Handler: handler})
	slog.SetDefault(logger)
}

// NewLogger creates a configured logger instance. Development loggers write
// text instead of JSON.
func NewLogger(serviceName string, isDev bool) *slog.Logger {
	opts := GetSlogHandlerOptions(LevelFromEnv())
	var handler slog.Handler
	if isDev {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.Level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes all standard dependencies
func NewService(ctx context.Context, cfg *Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		InitLogger()
		logger = slog.Default()
	}

	logger.Info("Initializing service", "project_id", cfg.ProjectID, "source", cfg.Source)

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		ServerName:  "strava-upload",
	}, logger); err != nil {
		return nil, err
	}

	// Firestore
	var db *database.FirestoreAdapter
	if cfg.LedgerEnabled {
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("Firestore init failed", "error", err)
			return nil, fmt.Errorf("firestore init: %w", err)
		}
		db = database.NewFirestoreAdapter(fsClient)
		logger.Info("Sync ledger: Firestore")
	} else {
		logger.Info("Sync ledger: disabled (SYNC_LEDGER_ENABLED!=true)")
	}

	// Pub/Sub
	var pubAdapter shared.Publisher
	if cfg.EnablePublish {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("PubSub init failed", "error", err)
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		pubAdapter = &infrapubsub.PubSubAdapter{Client: psClient}
		logger.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		pubAdapter = &infrapubsub.LogPublisher{Logger: logger}
		logger.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	// Storage
	gcsClient, err := storage.NewClient(ctx)
	if err != nil {
		logger.Error("Storage init failed", "error", err)
		return nil, fmt.Errorf("storage init: %w", err)
	}

	// Email
	var notifier shared.Notifier
	if cfg.SendGridAPIKey != "" && cfg.EmailTo != "" {
		notifier = notifications.NewSendGridMailer(cfg.SendGridAPIKey, "", cfg.EmailFrom, cfg.EmailTo)
		logger.Info("Email: SendGrid", "to", cfg.EmailTo)
	} else {
		notifier = &notifications.LogNotifier{Logger: logger}
		logger.Info("Email: MOCK (LogNotifier)")
	}

	svc := &Service{
		Store:    &infrastorage.StorageAdapter{Client: gcsClient},
		Pub:      pubAdapter,
		Notifier: notifier,
		Config:   cfg,
		Logger:   logger,
	}
	if db != nil {
		svc.DB = db
	}

	source, err := svc.stravaTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc.Strava = strava.NewClient(oauth.NewHTTPClient(source, stravaHTTPTimeout), cfg.StravaAPIURL)

	return svc, nil
}

// stravaTokenSource seeds the token from Firestore when a stored token exists,
// otherwise from the environment. Refreshed tokens are written back to Firestore.
func (s *Service) stravaTokenSource(ctx context.Context) (*oauth.RefreshingTokenSource, error) {
	initial := &oauth2.Token{
		AccessToken:  s.Config.StravaAccessToken,
		RefreshToken: s.Config.StravaRefreshToken,
		TokenType:    "Bearer",
	}

	var onRefresh oauth.RefreshFunc
	if s.DB != nil {
		stored, err := s.DB.GetToken(ctx, shared.ProviderStrava)
		if err != nil {
			return nil, fmt.Errorf("load strava token: %w", err)
		}
		if stored != nil && stored.RefreshToken != "" {
			initial = &oauth2.Token{
				AccessToken:  stored.AccessToken,
				RefreshToken: stored.RefreshToken,
				Expiry:       stored.ExpiresAt,
				TokenType:    "Bearer",
			}
			s.Logger.Info("Strava token loaded from Firestore", "expiry", stored.ExpiresAt)
		}

		db := s.DB
		onRefresh = func(ctx context.Context, tok *oauth2.Token) error {
			return db.SetToken(ctx, shared.ProviderStrava, &shared.StoredToken{
				AccessToken:  tok.AccessToken,
				RefreshToken: tok.RefreshToken,
				ExpiresAt:    tok.Expiry,
				UpdatedAt:    time.Now().UTC(),
			})
		}
	}

	if initial.AccessToken == "" && initial.RefreshToken == "" {
		return nil, fmt.Errorf("no Strava token configured")
	}

	return oauth.NewRefreshingTokenSource(oauth.Credentials{
		ClientID:     s.Config.StravaClientID,
		ClientSecret: s.Config.StravaClientSecret,
		TokenURL:     s.Config.StravaTokenURL,
	}, initial, onRefresh, s.Logger), nil
}

// Engine builds a sync engine over the service's Strava client.
func (s *Service) Engine() *stravasync.Engine {
	return stravasync.New(s.Strava, infrastorage.LocalFileSystem{}, s.Logger, stravasync.Options{
		PollInterval: s.Config.PollInterval,
	})
}

// Runner wires a sync runner from the service's adapters.
func (s *Service) Runner() *syncrun.Runner {
	disk := infrastorage.LocalFileSystem{}
	return syncrun.NewRunner(syncrun.Deps{
		Engine:    s.Engine(),
		Stager:    backup.NewStager(s.Store, disk, s.DB, s.Logger),
		Store:     s.Store,
		Ledger:    s.DB,
		Publisher: s.Pub,
		Notifier:  s.Notifier,
		Logger:    s.Logger,
	}, syncrun.Config{
		Bucket:         s.Config.BackupBucket,
		Prefixes:       s.Config.Prefixes(),
		LocalDir:       s.Config.LocalBackupDir,
		Lookback:       s.Config.Lookback,
		PushgatewayURL: s.Config.PushgatewayURL,
		Topic:          s.Config.Topic,
		ReportPrefix:   s.Config.ReportPrefix,
	})
}
