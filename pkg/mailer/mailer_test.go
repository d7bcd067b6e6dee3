package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDryRunReturnsConfirmationWithoutDispatch(t *testing.T) {
	t.Parallel()

	m := MustNew(Config{DryRun: true})
	got, err := m.Send(context.Background(), "supplier@acme.test", "Order 10 units of WidgetX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "supplier@acme.test") {
		t.Fatalf("confirmation should name the recipient, got %q", got)
	}
}

func TestSendPostsToGateway(t *testing.T) {
	t.Parallel()

	var seen sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sendResponse{ID: "msg-1"})
	}))
	defer srv.Close()

	m := MustNew(Config{URL: srv.URL, Token: "secret", Timeout: time.Second, DryRun: false})
	got, err := m.Send(context.Background(), "supplier@acme.test", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.To != "supplier@acme.test" {
		t.Fatalf("unexpected recipient: %s", seen.To)
	}
	if !strings.HasPrefix(got, "Success:") {
		t.Fatalf("unexpected confirmation: %q", got)
	}
}

func TestSendGatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := MustNew(Config{URL: srv.URL, DryRun: false})
	if _, err := m.Send(context.Background(), "supplier@acme.test", "body"); err == nil {
		t.Fatal("expected error from gateway failure")
	}
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	m := MustNew(Config{DryRun: true})
	if _, err := m.Send(context.Background(), "", "body"); err == nil {
		t.Fatal("expected error for empty recipient")
	}
	if _, err := m.Send(context.Background(), "supplier@acme.test", "  "); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestNewClientRequiresURLWhenLive(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{DryRun: false}); err == nil {
		t.Fatal("expected error for missing url")
	}
}
