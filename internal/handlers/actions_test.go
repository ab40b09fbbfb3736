package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"

	"github.com/suyash-modi/Product-Detection/internal/logger"
)

func TestActionHandlerQueued(t *testing.T) {
	log := logger.New(t.TempDir())
	queued := false
	handler := actionHandler(log, func() error {
		queued = true
		return nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/detect", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !queued {
		t.Error("enqueue was not called")
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["status"] != "queued" {
		t.Errorf("body = %v, want status queued", body)
	}
}

func TestActionHandlerQueueFull(t *testing.T) {
	log := logger.New(t.TempDir())
	handler := actionHandler(log, func() error {
		return errors.New("task queue full")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/detect", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestActionHandlerRejectsGet(t *testing.T) {
	log := logger.New(t.TempDir())
	called := false
	handler := actionHandler(log, func() error {
		called = true
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/detect", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if called {
		t.Error("GET must not enqueue")
	}
}
