package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlack_PostsHeaderAndSection(t *testing.T) {
	var got slackMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if s == nil {
		t.Fatal("expected slack client")
	}
	if err := s.Send(context.Background(), "🔴 Probes FAILING: billing", "Failing: billing.Web.test_home"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if got.Text != "🔴 Probes FAILING: billing" || got.Username != "probeharness" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if len(got.Blocks) != 2 || got.Blocks[0].Type != "header" {
		t.Fatalf("unexpected blocks: %+v", got.Blocks)
	}
	if !strings.Contains(got.Blocks[1].Text.Text, "billing.Web.test_home") {
		t.Fatalf("section missing text: %+v", got.Blocks[1])
	}
}

func TestSlack_Non2xxCarriesReason(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_payload\n"))
	}))
	defer ts.Close()

	err := NewSlack(ts.URL).Send(context.Background(), "X", "Y")
	if err == nil || !strings.Contains(err.Error(), "400: invalid_payload") {
		t.Fatalf("expected status and reason, got %v", err)
	}
}

func TestNewSlack_EmptyWebhook(t *testing.T) {
	if NewSlack("") != nil {
		t.Fatal("empty webhook should disable slack")
	}
	var s *Slack
	if err := s.Send(context.Background(), "t", "x"); err == nil {
		t.Fatal("nil slack should refuse to send")
	}
}
