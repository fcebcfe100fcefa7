package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/consult/internal/consultations"
	"github.com/JaimeStill/consult/pkg/storage"
)

var errNoSource = errors.New("no data source: pass --file or --api")

const requestTimeout = 15 * time.Second

func (o *options) load(ctx context.Context, query url.Values) ([]consultations.Consultation, error) {
	switch {
	case o.file != "":
		return readExport(o.file)
	case o.api != "":
		var records []consultations.Consultation
		if err := o.get(ctx, "/consultations/export", query, &records); err != nil {
			return nil, err
		}
		return records, nil
	default:
		return nil, errNoSource
	}
}

func (o *options) drafts(ctx context.Context, prefix string) ([]storage.Blob, error) {
	if o.api == "" {
		return nil, errors.New("drafts require --api")
	}

	var blobs []storage.Blob
	q := url.Values{}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if err := o.get(ctx, "/drafts", q, &blobs); err != nil {
		return nil, err
	}
	return blobs, nil
}

func (o *options) get(ctx context.Context, path string, query url.Values, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	target := strings.TrimSuffix(o.api, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, body.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func readExport(path string) ([]consultations.Consultation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var records []consultations.Consultation
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}
	return records, nil
}
