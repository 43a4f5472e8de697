package firestore

import (
	"time"

	shared "github.com/marazt/strava-upload/pkg"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get an integer from map (Firestore returns int64)
func getInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Helper to safely get time from map (handles time.Time from Firestore)
func getTime(m map[string]interface{}, key string) time.Time {
	if v, ok := m[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// --- SyncedActivity Converters ---

func SyncedActivityToFirestore(s *shared.SyncedActivity) map[string]interface{} {
	m := map[string]interface{}{
		"source":    s.Source,
		"source_id": s.SourceID,
		"outcome":   s.Outcome,
		"run_id":    s.RunID,
		"synced_at": s.SyncedAt,
	}
	if s.ActivityID != 0 {
		m["activity_id"] = s.ActivityID
	}
	if s.UploadID != 0 {
		m["upload_id"] = s.UploadID
	}
	return m
}

func FirestoreToSyncedActivity(m map[string]interface{}) *shared.SyncedActivity {
	return &shared.SyncedActivity{
		Source:     getString(m, "source"),
		SourceID:   getString(m, "source_id"),
		Outcome:    getString(m, "outcome"),
		ActivityID: getInt64(m, "activity_id"),
		UploadID:   getInt64(m, "upload_id"),
		RunID:      getString(m, "run_id"),
		SyncedAt:   getTime(m, "synced_at"),
	}
}

// --- StoredToken Converters ---

func TokenToFirestore(t *shared.StoredToken) map[string]interface{} {
	m := map[string]interface{}{
		"access_token": t.AccessToken,
		"updated_at":   t.UpdatedAt,
	}
	// A refresh response may omit the refresh token; keep the stored one.
	if t.RefreshToken != "" {
		m["refresh_token"] = t.RefreshToken
	}
	if !t.ExpiresAt.IsZero() {
		m["expires_at"] = t.ExpiresAt
	}
	return m
}

func FirestoreToToken(m map[string]interface{}) *shared.StoredToken {
	return &shared.StoredToken{
		AccessToken:  getString(m, "access_token"),
		RefreshToken: getString(m, "refresh_token"),
		ExpiresAt:    getTime(m, "expires_at"),
		UpdatedAt:    getTime(m, "updated_at"),
	}
}
