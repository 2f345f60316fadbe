package assets

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// City is one entry of a cities asset.
type City struct {
	Name string `json:"name"`
	UF   string `json:"uf,omitempty"`
}

// Loader reads word lists from a base directory and caches them per path.
// Missing files load as empty lists so callers can fall back to built-in data.
type Loader struct {
	baseDir string

	mu      sync.RWMutex
	lines   map[string][]string
	cities  map[string][]City
	missing map[string]bool
}

func NewLoader(baseDir string) *Loader {
	return &Loader{
		baseDir: baseDir,
		lines:   make(map[string][]string),
		cities:  make(map[string][]City),
		missing: make(map[string]bool),
	}
}

// Lines returns trimmed non-empty lines, skipping '#' comments.
func (l *Loader) Lines(rel string) ([]string, error) {
	l.mu.RLock()
	cached, ok := l.lines[rel]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := l.read(rel)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", rel, err)
	}

	l.mu.Lock()
	l.lines[rel] = out
	l.mu.Unlock()
	return out, nil
}

// Cities accepts a JSON array of {name, uf} objects or of plain names.
func (l *Loader) Cities(rel string) ([]City, error) {
	l.mu.RLock()
	cached, ok := l.cities[rel]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := l.read(rel)
	if err != nil {
		return nil, err
	}

	out := make([]City, 0)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			var names []string
			if nameErr := json.Unmarshal(data, &names); nameErr != nil {
				return nil, fmt.Errorf("invalid json asset %s: %w", rel, err)
			}
			out = make([]City, 0, len(names))
			for _, n := range names {
				out = append(out, City{Name: n})
			}
		}
	}

	l.mu.Lock()
	l.cities[rel] = out
	l.mu.Unlock()
	return out, nil
}

// Missing reports whether rel was looked up and not found.
func (l *Loader) Missing(rel string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.missing[rel]
}

func (l *Loader) read(rel string) ([]byte, error) {
	if l.baseDir == "" {
		l.markMissing(rel)
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.markMissing(rel)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read asset %s: %w", rel, err)
	}
	return data, nil
}

func (l *Loader) markMissing(rel string) {
	l.mu.Lock()
	l.missing[rel] = true
	l.mu.Unlock()
}
