package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateFromChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate_story_from_chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message != "a dragon who bakes bread" {
			t.Errorf("message = %q", req.Message)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"analysis": {"theme": "Baking Dragon"},
			"storybook": {
				"id": "sb-42",
				"theme": "Baking Dragon",
				"pages": [{"page_number": 1, "text": "Ember preheated her cave."}]
			}
		}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, time.Second).GenerateFromChat(context.Background(), "a dragon who bakes bread")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Error("success should be true")
	}
	if result.Storybook == nil || result.Storybook.ID != "sb-42" {
		t.Fatalf("storybook = %+v", result.Storybook)
	}
	if len(result.Storybook.Pages) != 1 || result.Storybook.Pages[0].Text != "Ember preheated her cave." {
		t.Errorf("pages = %+v", result.Storybook.Pages)
	}
	if result.Analysis == nil || result.Analysis.Theme != "Baking Dragon" {
		t.Errorf("analysis = %+v", result.Analysis)
	}
}

func TestGenerateFromChatBackendRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "model unavailable"}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL, time.Second).GenerateFromChat(context.Background(), "anything")
	if err != nil {
		t.Fatalf("a clean refusal is not a transport error: %v", err)
	}
	if result.Success {
		t.Error("success should be false")
	}
	if result.Error != "model unavailable" {
		t.Errorf("error = %q", result.Error)
	}
}

func TestGenerateFromChatHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).GenerateFromChat(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error on HTTP 500")
	}
}

func TestCurrentStorybook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/get_current_storybook" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "storybook": {"id": "sb-7", "theme": "Ocean Friends"}}`))
	}))
	defer srv.Close()

	book, err := NewClient(srv.URL, time.Second).CurrentStorybook(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if book.ID != "sb-7" || book.Theme != "Ocean Friends" {
		t.Errorf("storybook = %+v", book)
	}
}

func TestCurrentStorybookWhenNoneGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "no storybook generated yet"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).CurrentStorybook(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no storybook generated yet") {
		t.Fatalf("err = %v, want the backend's reason", err)
	}
}

func TestExportPDFStreamsBinary(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/export_pdf" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			StorybookID string `json:"storybook_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StorybookID != "sb-42" {
			t.Errorf("storybook_id = %q (err %v)", req.StorybookID, err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := NewClient(srv.URL, time.Second).ExportPDF(context.Background(), "sb-42", &out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), pdf) {
		t.Errorf("downloaded %q, want %q", out.Bytes(), pdf)
	}
}

func TestExportPDFSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "Storybook not found"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := NewClient(srv.URL, time.Second).ExportPDF(context.Background(), "missing", &out)
	if err == nil || !strings.Contains(err.Error(), "Storybook not found") {
		t.Fatalf("err = %v, want the backend's reason", err)
	}
	if out.Len() != 0 {
		t.Error("no bytes should be written on failure")
	}
}
