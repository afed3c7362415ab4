package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Remote stores artifacts in an HTTP object store: PUT to save, GET to
// load, HEAD to probe. Objects live under a key prefix so several
// deployments can share one bucket endpoint.
type Remote struct {
	endpoint string
	prefix   string
	client   *http.Client
}

// NewRemote returns a Remote talking to endpoint, keying objects under
// prefix. A nil client gets a 30-second-timeout default.
func NewRemote(endpoint, prefix string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{endpoint: endpoint, prefix: prefix, client: client}
}

func (r *Remote) objectURL(key string, format Format) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("artifact endpoint: %w", err)
	}
	u.Path = path.Join(u.Path, r.prefix, key+extension(format))
	return u.String(), nil
}

// Save uploads the table and returns the object URL.
func (r *Remote) Save(ctx context.Context, key string, tbl *Table, format Format) (string, error) {
	data, err := encode(tbl, format)
	if err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	loc, err := r.objectURL(key, format)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, loc, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("save artifact %q: object store returned %s", key, resp.Status)
	}
	return loc, nil
}

// Load downloads and decodes the table stored under key.
func (r *Remote) Load(ctx context.Context, key string, format Format) (*Table, error) {
	loc, err := r.objectURL(key, format)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load artifact %q: object store returned %s", key, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	tbl, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	return tbl, nil
}

// Exists probes both formats with HEAD requests.
func (r *Remote) Exists(ctx context.Context, key string) (bool, error) {
	for _, format := range []Format{FormatColumnar, FormatDelimited} {
		loc, err := r.objectURL(key, format)
		if err != nil {
			return false, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, loc, nil)
		if err != nil {
			return false, fmt.Errorf("probe artifact %q: %w", key, err)
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return false, fmt.Errorf("probe artifact %q: %w", key, err)
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusOK:
			return true, nil
		case resp.StatusCode == http.StatusNotFound:
			continue
		default:
			return false, fmt.Errorf("probe artifact %q: object store returned %s", key, resp.Status)
		}
	}
	return false, nil
}
