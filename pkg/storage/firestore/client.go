package firestore

import (
	"cloud.google.com/go/firestore"

	shared "github.com/marazt/strava-upload/pkg"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(client *firestore.Client) *Client {
	return &Client{fs: client}
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// SyncedActivities is a top-level collection: synced_activities/{source}_{source_id}
func (c *Client) SyncedActivities() *Collection[shared.SyncedActivity] {
	return &Collection[shared.SyncedActivity]{
		Ref:           c.fs.Collection(shared.CollectionSyncedActivities),
		ToFirestore:   SyncedActivityToFirestore,
		FromFirestore: FirestoreToSyncedActivity,
	}
}

// Tokens is a top-level collection keyed by provider: tokens/{provider}
func (c *Client) Tokens() *Collection[shared.StoredToken] {
	return &Collection[shared.StoredToken]{
		Ref:           c.fs.Collection(shared.CollectionTokens),
		ToFirestore:   TokenToFirestore,
		FromFirestore: FirestoreToToken,
	}
}
