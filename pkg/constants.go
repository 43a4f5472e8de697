package shared

const (
	ProjectID = "strava-upload" // Can be overridden by env var in main if needed

	TopicSyncCompleted = "topic-strava-sync-completed"

	EventTypeSyncCompleted = "com.stravaupload.sync.completed"
	EventSource            = "/strava-upload/syncrun"

	CollectionSyncedActivities = "synced_activities"
	CollectionTokens           = "tokens"

	ProviderStrava = "strava"
)
