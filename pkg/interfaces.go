package shared

import (
	"context"
	"time"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// --- Remote Platform Interfaces ---

// ActivityLister pages through the athlete's remote activities.
// An empty page marks the end.
type ActivityLister interface {
	ListActivities(ctx context.Context, page, perPage int) ([]strava.ActivitySummary, error)
}

// StravaAPI is the set of remote calls the sync engine issues.
type StravaAPI interface {
	ActivityLister
	UpdateActivity(ctx context.Context, activityID int64, field strava.ActivityField, value string) error
	CreateActivity(ctx context.Context, params strava.CreateActivityParams) (int64, error)
	UploadActivity(ctx context.Context, params strava.UploadParams) (*strava.UploadStatus, error)
	CheckUploadStatus(ctx context.Context, uploadID int64) (*strava.UploadStatus, error)
}

// --- Persistence Interfaces ---

// SyncedActivity is one ledger entry: a local record that reached Strava.
type SyncedActivity struct {
	Source     string    `firestore:"source"`
	SourceID   string    `firestore:"source_id"`
	Outcome    string    `firestore:"outcome"`
	ActivityID int64     `firestore:"activity_id,omitempty"`
	UploadID   int64     `firestore:"upload_id,omitempty"`
	RunID      string    `firestore:"run_id"`
	SyncedAt   time.Time `firestore:"synced_at"`
}

// StoredToken is the persisted OAuth token of the Strava account.
type StoredToken struct {
	AccessToken  string    `firestore:"access_token"`
	RefreshToken string    `firestore:"refresh_token"`
	ExpiresAt    time.Time `firestore:"expires_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

type Database interface {
	// Sync ledger
	GetSyncedActivity(ctx context.Context, source, sourceID string) (*SyncedActivity, error)
	SetSyncedActivity(ctx context.Context, record *SyncedActivity) error

	// OAuth token of the destination account
	GetToken(ctx context.Context, provider string) (*StoredToken, error)
	SetToken(ctx context.Context, provider string, token *StoredToken) error
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// FileSystem is the local disk as seen by the sync engine.
type FileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// --- Notification Interfaces ---

type Notifier interface {
	SendEmail(ctx context.Context, subject, htmlBody string) error
}
