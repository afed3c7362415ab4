package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Discovery parameters: the listing call can hit transient filesystem
// errors, so it retries a bounded number of times with a delay.
const (
	discoverAttempts = 3
	discoverDelay    = 10 * time.Second
)

// supportedExt reports whether a file name carries an extension the
// pipeline can load.
func supportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xml":
		return true
	}
	return false
}

// discover lists loadable files in the incoming directory, creating the
// directory if it does not exist yet. An empty directory is an empty
// result, not an error. Results are sorted by name for a deterministic
// processing order.
func (p *Pipeline) discover(dir string) ([]string, error) {
	var lastErr error
	for attempt := 1; attempt <= discoverAttempts; attempt++ {
		files, err := listIncoming(dir)
		if err == nil {
			return files, nil
		}
		lastErr = err
		p.logger.Warn("file discovery failed",
			"dir", dir, "attempt", attempt, "error", err)
		if attempt < discoverAttempts {
			p.sleep(p.retryDelay)
		}
	}
	return nil, newError(KindTransientIO, "",
		fmt.Sprintf("listing %s failed after %d attempts", dir, discoverAttempts), lastErr)
}

func listIncoming(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create incoming dir: %w", err)
		}
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list incoming dir: %w", err)
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !supportedExt(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
