package mocks

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudevents/sdk-go/v2/event"

	shared "github.com/marazt/strava-upload/pkg"
	"github.com/marazt/strava-upload/pkg/integrations/strava"
)

// --- Mock Strava Client ---
type MockStravaClient struct {
	ListActivitiesFunc    func(ctx context.Context, page, perPage int) ([]strava.ActivitySummary, error)
	UpdateActivityFunc    func(ctx context.Context, activityID int64, field strava.ActivityField, value string) error
	CreateActivityFunc    func(ctx context.Context, params strava.CreateActivityParams) (int64, error)
	UploadActivityFunc    func(ctx context.Context, params strava.UploadParams) (*strava.UploadStatus, error)
	CheckUploadStatusFunc func(ctx context.Context, uploadID int64) (*strava.UploadStatus, error)
}

func (m *MockStravaClient) ListActivities(ctx context.Context, page, perPage int) ([]strava.ActivitySummary, error) {
	if m.ListActivitiesFunc != nil {
		return m.ListActivitiesFunc(ctx, page, perPage)
	}
	return nil, nil
}
func (m *MockStravaClient) UpdateActivity(ctx context.Context, activityID int64, field strava.ActivityField, value string) error {
	if m.UpdateActivityFunc != nil {
		return m.UpdateActivityFunc(ctx, activityID, field, value)
	}
	return nil
}
func (m *MockStravaClient) CreateActivity(ctx context.Context, params strava.CreateActivityParams) (int64, error) {
	if m.CreateActivityFunc != nil {
		return m.CreateActivityFunc(ctx, params)
	}
	return 1, nil
}
func (m *MockStravaClient) UploadActivity(ctx context.Context, params strava.UploadParams) (*strava.UploadStatus, error) {
	if m.UploadActivityFunc != nil {
		return m.UploadActivityFunc(ctx, params)
	}
	return &strava.UploadStatus{ID: 1, Status: strava.StatusProcessing}, nil
}
func (m *MockStravaClient) CheckUploadStatus(ctx context.Context, uploadID int64) (*strava.UploadStatus, error) {
	if m.CheckUploadStatusFunc != nil {
		return m.CheckUploadStatusFunc(ctx, uploadID)
	}
	return &strava.UploadStatus{ID: uploadID, Status: strava.StatusReady, ActivityID: uploadID}, nil
}

// --- Mock Database ---
type MockDatabase struct {
	GetSyncedActivityFunc func(ctx context.Context, source, sourceID string) (*shared.SyncedActivity, error)
	SetSyncedActivityFunc func(ctx context.Context, record *shared.SyncedActivity) error
	GetTokenFunc          func(ctx context.Context, provider string) (*shared.StoredToken, error)
	SetTokenFunc          func(ctx context.Context, provider string, token *shared.StoredToken) error
}

func (m *MockDatabase) GetSyncedActivity(ctx context.Context, source, sourceID string) (*shared.SyncedActivity, error) {
	if m.GetSyncedActivityFunc != nil {
		return m.GetSyncedActivityFunc(ctx, source, sourceID)
	}
	return nil, nil
}
func (m *MockDatabase) SetSyncedActivity(ctx context.Context, record *shared.SyncedActivity) error {
	if m.SetSyncedActivityFunc != nil {
		return m.SetSyncedActivityFunc(ctx, record)
	}
	return nil
}
func (m *MockDatabase) GetToken(ctx context.Context, provider string) (*shared.StoredToken, error) {
	if m.GetTokenFunc != nil {
		return m.GetTokenFunc(ctx, provider)
	}
	return nil, nil
}
func (m *MockDatabase) SetToken(ctx context.Context, provider string, token *shared.StoredToken) error {
	if m.SetTokenFunc != nil {
		return m.SetTokenFunc(ctx, provider, token)
	}
	return nil
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
	ListFunc  func(ctx context.Context, bucket, prefix string) ([]string, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return []byte("mock-data"), nil
}
func (m *MockBlobStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, bucket, prefix)
	}
	return nil, nil
}

// --- Mock File System ---

// MockFileSystem serves files from memory.
type MockFileSystem struct {
	Files map[string][]byte
}

func (m *MockFileSystem) Exists(path string) bool {
	_, ok := m.Files[path]
	return ok
}
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, os.ErrNotExist)
	}
	return data, nil
}

// --- Mock Notifier ---
type MockNotifier struct {
	SendEmailFunc func(ctx context.Context, subject, htmlBody string) error
}

func (m *MockNotifier) SendEmail(ctx context.Context, subject, htmlBody string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, subject, htmlBody)
	}
	return nil
}
