package database

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	shared "github.com/marazt/strava-upload/pkg"
	storage "github.com/marazt/strava-upload/pkg/storage/firestore"
)

// FirestoreAdapter provides database operations using Firestore
// It wraps our typed storage client
type FirestoreAdapter struct {
	storage *storage.Client
}

func NewFirestoreAdapter(client *firestore.Client) *FirestoreAdapter {
	return &FirestoreAdapter{
		storage: storage.NewClient(client),
	}
}

// SyncedActivityID is the ledger document id of a local record.
func SyncedActivityID(source, sourceID string) string {
	return source + "_" + sourceID
}

// GetSyncedActivity returns nil without error when the record was never synced.
func (a *FirestoreAdapter) GetSyncedActivity(ctx context.Context, source, sourceID string) (*shared.SyncedActivity, error) {
	doc, err := a.storage.SyncedActivities().Doc(SyncedActivityID(source, sourceID)).Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *FirestoreAdapter) SetSyncedActivity(ctx context.Context, record *shared.SyncedActivity) error {
	return a.storage.SyncedActivities().Doc(SyncedActivityID(record.Source, record.SourceID)).Set(ctx, record)
}

// GetToken returns nil without error when no token was persisted yet.
func (a *FirestoreAdapter) GetToken(ctx context.Context, provider string) (*shared.StoredToken, error) {
	doc, err := a.storage.Tokens().Doc(provider).Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *FirestoreAdapter) SetToken(ctx context.Context, provider string, token *shared.StoredToken) error {
	return a.storage.Tokens().Doc(provider).Set(ctx, token)
}

// Close releases the underlying Firestore client.
func (a *FirestoreAdapter) Close() error {
	return a.storage.Close()
}
