package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/consult/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "conn"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "drafts" {
		t.Errorf("container_name: got %s, want drafts", cfg.ContainerName)
	}
	if cfg.MaxListSize != 50 {
		t.Errorf("max_list_size: got %d, want 50", cfg.MaxListSize)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_CONTAINER", "letters")
	t.Setenv("TEST_CONN", "override-connection")
	t.Setenv("TEST_MAX_LIST", "9000")

	env := &storage.Env{
		ContainerName:    "TEST_CONTAINER",
		ConnectionString: "TEST_CONN",
		MaxListSize:      "TEST_MAX_LIST",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "letters" {
		t.Errorf("container_name: got %s, want letters", cfg.ContainerName)
	}
	if cfg.ConnectionString != "override-connection" {
		t.Errorf("connection_string: got %s, want override-connection", cfg.ConnectionString)
	}
	if cfg.MaxListSize != storage.MaxListCap {
		t.Errorf("max_list_size: got %d, want cap %d", cfg.MaxListSize, storage.MaxListCap)
	}
}

func TestFinalizeMissingConnectionString(t *testing.T) {
	cfg := storage.Config{ContainerName: "drafts"}
	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "connection_string required") {
		t.Errorf("Finalize() error = %v, want connection_string required", err)
	}
}

func TestFinalizeContainerName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"lowercase", "drafts", false},
		{"digits and hyphen", "consult-drafts-2026", false},
		{"too short", "dr", true},
		{"uppercase", "Drafts", true},
		{"double hyphen", "consult--drafts", true},
		{"trailing hyphen", "drafts-", true},
		{"too long", strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := storage.Config{ContainerName: tt.value, ConnectionString: "conn"}
			err := cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{ContainerName: "drafts", ConnectionString: "base-conn", MaxListSize: 50}
	base.Merge(&storage.Config{ConnectionString: "overlay-conn"})

	if base.ContainerName != "drafts" {
		t.Errorf("container_name should remain drafts, got %s", base.ContainerName)
	}
	if base.ConnectionString != "overlay-conn" {
		t.Errorf("connection_string: got %s, want overlay-conn", base.ConnectionString)
	}
	if base.MaxListSize != 50 {
		t.Errorf("max_list_size should remain 50, got %d", base.MaxListSize)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		wantErr bool
	}{
		{"azurite connection string", azuriteConnString, false},
		{"malformed connection string", "not-a-connection-string", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &storage.Config{ContainerName: "drafts", ConnectionString: tt.conn}
			sys, err := storage.New(cfg, discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sys == nil {
				t.Fatal("New() returned nil system")
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrKeyTooLong, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	sys, err := storage.New(&storage.Config{ContainerName: "drafts", ConnectionString: azuriteConnString}, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "drafts/../secrets/key", storage.ErrInvalidKey},
		{"double dot in segment", "drafts/..hidden/draft.html", storage.ErrInvalidKey},
		{"leading slash", "/drafts/draft.html", storage.ErrInvalidKey},
		{"control character", "drafts/a\nb.html", storage.ErrInvalidKey},
		{"too long", "drafts/" + strings.Repeat("x", storage.MaxKeyLength), storage.ErrKeyTooLong},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "text/html"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := sys.List(ctx, "drafts/../"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("List() error = %v, want %v", err, storage.ErrInvalidKey)
	}
	if _, err := sys.List(ctx, "/drafts"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("List() error = %v, want %v", err, storage.ErrInvalidKey)
	}
}
