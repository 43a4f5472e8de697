package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendGridMailer_SendEmail(t *testing.T) {
	var payload struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Subject          string `json:"subject"`
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	mailer := NewSendGridMailer("sg-key", server.URL, "bot@example.com", "me@example.com")
	if err := mailer.SendEmail(t.Context(), "Strava sync", "<p>done</p>"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	if payload.Subject != "Strava sync" || payload.From.Email != "bot@example.com" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if len(payload.Personalizations) != 1 || payload.Personalizations[0].To[0].Email != "me@example.com" {
		t.Errorf("unexpected recipients %+v", payload.Personalizations)
	}
	found := false
	for _, c := range payload.Content {
		if c.Type == "text/html" && c.Value == "<p>done</p>" {
			found = true
		}
	}
	if !found {
		t.Errorf("html content missing: %+v", payload.Content)
	}
}

func TestSendGridMailer_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	mailer := NewSendGridMailer("bad", server.URL, "bot@example.com", "me@example.com")
	if err := mailer.SendEmail(t.Context(), "s", "b"); err == nil {
		t.Fatal("expected error for 401")
	}
}
