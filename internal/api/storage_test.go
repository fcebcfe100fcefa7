package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/consult/pkg/lifecycle"
	"github.com/JaimeStill/consult/pkg/routes"
	"github.com/JaimeStill/consult/pkg/storage"
)

type mockStore struct {
	blobs      map[string]string
	listPrefix string
}

func (m *mockStore) Start(lc *lifecycle.Coordinator) error { return nil }

func (m *mockStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	return nil
}

func (m *mockStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if strings.Contains(key, "..") {
		return nil, storage.ErrInvalidKey
	}
	body, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error { return nil }

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *mockStore) List(ctx context.Context, prefix string) ([]storage.Blob, error) {
	m.listPrefix = prefix
	var out []storage.Blob
	for key, body := range m.blobs {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.Blob{Key: key, Size: int64(len(body))})
		}
	}
	return out, nil
}

func setupDrafts(store *mockStore) *http.ServeMux {
	mux := http.NewServeMux()
	h := newStorageHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	routes.Register(mux, h.routes())
	return mux
}

func TestDraftDownload(t *testing.T) {
	store := &mockStore{blobs: map[string]string{
		"drafts/7d4a/20260310T160506.007Z.html": "<p>draft</p>",
	}}
	mux := setupDrafts(store)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"existing draft", "/drafts/7d4a/20260310T160506.007Z.html", http.StatusOK},
		{"missing draft", "/drafts/7d4a/missing.html", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK {
				if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
					t.Errorf("content type: got %s", ct)
				}
				if rec.Body.String() != "<p>draft</p>" {
					t.Errorf("body: got %q", rec.Body.String())
				}
			}
		})
	}
}

func TestDraftList(t *testing.T) {
	store := &mockStore{blobs: map[string]string{
		"drafts/7d4a/a.html": "a",
		"drafts/9b1c/b.html": "bb",
	}}
	mux := setupDrafts(store)

	tests := []struct {
		name       string
		query      string
		wantPrefix string
	}{
		{"all drafts", "", "drafts/"},
		{"by consultation", "?prefix=7d4a/", "drafts/7d4a/"},
		{"prefix already rooted", "?prefix=drafts/7d4a/", "drafts/7d4a/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/drafts"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rec.Code)
			}
			if store.listPrefix != tt.wantPrefix {
				t.Errorf("list prefix: got %s, want %s", store.listPrefix, tt.wantPrefix)
			}
		})
	}
}
