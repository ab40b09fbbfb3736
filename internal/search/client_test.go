package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookupSuccess(t *testing.T) {
	var gotQuery, gotCrop string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCrop = r.URL.Query().Get("crop")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": " Cola 1.5L ", "price": "$2.49", "source": "shop", "link": "https://example.com/cola"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Lookup(context.Background(), "/data/products/product_cola_0_10_10.jpg", "cola")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}

	if gotQuery != "cola" {
		t.Errorf("q = %q, want cola", gotQuery)
	}
	if gotCrop != "product_cola_0_10_10.jpg" {
		t.Errorf("crop = %q, want the file base name", gotCrop)
	}
	if result.Title != "Cola 1.5L" {
		t.Errorf("title = %q (should be trimmed)", result.Title)
	}
	if result.Price != "$2.49" || result.Source != "shop" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestLookupNotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Lookup(context.Background(), "", "cola")
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
}

func TestLookupEmptyResultIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "  ", "price": ""}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Lookup(context.Background(), "", "cola")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result != nil {
		t.Errorf("blank title and price should mean no result, got %+v", result)
	}
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	if _, err := c.Lookup(context.Background(), "", "cola"); err == nil {
		t.Error("expected an error for a 500 response")
	}
}

func TestLookupDisabledClient(t *testing.T) {
	c := NewClient("", 5*time.Second)
	if c.Enabled() {
		t.Error("client with no endpoint should be disabled")
	}
	result, err := c.Lookup(context.Background(), "", "cola")
	if err != nil || result != nil {
		t.Errorf("disabled client should return nothing: %v, %v", result, err)
	}
}

func TestLookupContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Lookup(ctx, "", "cola"); err == nil {
		t.Error("expected an error when the context expires")
	}
}
