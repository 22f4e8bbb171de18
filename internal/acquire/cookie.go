package acquire

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileCookie reads the session cookie from a file and reloads it whenever
// the file changes, so rotated cookies take effect without a restart.
type FileCookie struct {
	path string
	log  zerolog.Logger

	mu    sync.RWMutex
	value string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchCookieFile loads path and starts watching it. Close stops the watcher.
func WatchCookieFile(path string, log zerolog.Logger) (*FileCookie, error) {
	fc := &FileCookie{
		path: filepath.Clean(path),
		log:  log.With().Str("component", "cookie").Logger(),
		done: make(chan struct{}),
	}
	if err := fc.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and secret mounts replace the file
	// rather than writing it in place.
	if err := w.Add(filepath.Dir(fc.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(fc.path), err)
	}
	fc.watcher = w

	go fc.watchLoop()
	return fc, nil
}

// Cookie returns the current cookie header value.
func (fc *FileCookie) Cookie() string {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.value
}

// Close stops watching the file.
func (fc *FileCookie) Close() error {
	if fc.watcher == nil {
		return nil
	}
	err := fc.watcher.Close()
	<-fc.done
	return err
}

func (fc *FileCookie) watchLoop() {
	defer close(fc.done)
	for {
		select {
		case event, ok := <-fc.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fc.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if err := fc.reload(); err != nil {
				fc.log.Warn().Err(err).Str("path", fc.path).Msg("cookie reload failed, keeping previous value")
				continue
			}
			fc.log.Info().Str("path", fc.path).Msg("cookie file reloaded")

		case err, ok := <-fc.watcher.Errors:
			if !ok {
				return
			}
			fc.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

func (fc *FileCookie) reload() error {
	data, err := os.ReadFile(fc.path)
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	v := parseCookieFile(string(data))

	fc.mu.Lock()
	fc.value = v
	fc.mu.Unlock()
	return nil
}

// parseCookieFile joins non-empty, non-comment lines with "; ".
func parseCookieFile(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, strings.TrimSuffix(line, ";"))
	}
	return strings.Join(parts, "; ")
}
