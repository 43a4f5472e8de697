package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httputil "github.com/marazt/strava-upload/pkg/infrastructure/http"
)

const (
	DefaultBaseURL  = "https://www.strava.com/api/v3"
	DefaultTokenURL = "https://www.strava.com/oauth/token"

	// MaxPageSize is the largest per_page value the activities endpoint accepts.
	MaxPageSize = 200
)

// Client is an API client for the Strava v3 REST API. Authentication is
// handled by the injected http.Client's transport.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Strava client. An empty baseURL means DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListActivities returns one page of the authenticated athlete's activities,
// newest first. Pages start at 1; an empty page marks the end.
func (c *Client) ListActivities(ctx context.Context, page, perPage int) ([]ActivitySummary, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := c.newRequest(ctx, http.MethodGet, "/athlete/activities?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var activities []ActivitySummary
	if err := c.do(req, &activities); err != nil {
		return nil, fmt.Errorf("list activities page %d: %w", page, err)
	}
	return activities, nil
}

// UpdateActivity sets a single field of an existing activity.
func (c *Client) UpdateActivity(ctx context.Context, activityID int64, field ActivityField, value string) error {
	payload, err := json.Marshal(map[string]string{string(field): value})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/activities/%d", activityID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("update activity %d %s: %w", activityID, field, err)
	}
	return nil
}

// CreateActivity creates a manual activity without a GPS track.
func (c *Client) CreateActivity(ctx context.Context, params CreateActivityParams) (int64, error) {
	form := url.Values{}
	form.Set("name", params.Name)
	form.Set("type", params.Type)
	form.Set("sport_type", params.Type)
	form.Set("start_date_local", params.StartDateLocal.Format("2006-01-02T15:04:05Z"))
	form.Set("elapsed_time", strconv.Itoa(params.ElapsedSeconds))
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	if params.DistanceMeters > 0 {
		form.Set("distance", strconv.FormatFloat(params.DistanceMeters, 'f', 1, 64))
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/activities", strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var created ActivitySummary
	if err := c.do(req, &created); err != nil {
		return 0, fmt.Errorf("create activity %q: %w", params.Name, err)
	}
	return created.ID, nil
}

// UploadActivity submits a GPS file for asynchronous processing.
//
// Strava rejects some files synchronously with a 4xx body shaped like an
// upload status. Those are returned as an *UploadError so callers can
// classify the message; transport and other HTTP failures come back as-is.
func (c *Client) UploadActivity(ctx context.Context, params UploadParams) (*UploadStatus, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", params.FileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(params.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	fields := map[string]string{
		"data_type":     params.DataType,
		"activity_type": params.ActivityType,
		"external_id":   params.ExternalID,
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads", bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var status UploadStatus
	err = c.do(req, &status)
	if err != nil {
		var httpErr *httputil.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
			if rejected := decodeRejection(httpErr); rejected != nil {
				return nil, rejected
			}
		}
		return nil, fmt.Errorf("upload %s: %w", params.FileName, err)
	}
	if status.Error != "" {
		return &status, &UploadError{Message: status.Error, Status: &status}
	}
	return &status, nil
}

// CheckUploadStatus polls the processing state of an upload.
func (c *Client) CheckUploadStatus(ctx context.Context, uploadID int64) (*UploadStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/uploads/%d", uploadID), nil)
	if err != nil {
		return nil, err
	}

	var status UploadStatus
	if err := c.do(req, &status); err != nil {
		return nil, fmt.Errorf("check upload %d: %w", uploadID, err)
	}
	return &status, nil
}

func decodeRejection(httpErr *httputil.HTTPError) *UploadError {
	var body struct {
		UploadStatus
		Message string `json:"message"`
		Errors  []struct {
			Resource string `json:"resource"`
			Field    string `json:"field"`
			Code     string `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(httpErr.Body), &body); err != nil {
		return nil
	}
	if body.Error != "" {
		status := body.UploadStatus
		return &UploadError{Message: body.Error, Status: &status, HTTPStatus: httpErr.StatusCode}
	}
	if len(body.Errors) > 0 {
		parts := make([]string, 0, len(body.Errors))
		for _, e := range body.Errors {
			parts = append(parts, strings.TrimSpace(e.Field+" "+e.Code))
		}
		return &UploadError{Message: body.Message + ": " + strings.Join(parts, ", "), HTTPStatus: httpErr.StatusCode}
	}
	return nil
}
