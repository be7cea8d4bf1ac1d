package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// FileStore keeps each key in its own JSON file under a directory
type FileStore struct {
	dir string

	mu      sync.Mutex
	written map[string][]byte // last bytes this process wrote, per key
	closed  bool
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{
		dir:     dir,
		written: make(map[string][]byte),
	}, nil
}

// Dir returns the directory backing the store
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(fs.dir, key+fileExt), nil
}

func (fs *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if fs.isClosed() {
		return nil, false, ErrClosed
	}
	p, err := fs.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes atomically through a temp file and rename
func (fs *FileStore) Set(_ context.Context, key string, value []byte) error {
	if fs.isClosed() {
		return ErrClosed
	}
	p, err := fs.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, ".tmp-"+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	fs.mu.Lock()
	fs.written[key] = append([]byte(nil), value...)
	fs.mu.Unlock()

	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (fs *FileStore) Delete(_ context.Context, key string) error {
	if fs.isClosed() {
		return ErrClosed
	}
	p, err := fs.path(key)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	delete(fs.written, key)
	fs.mu.Unlock()
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (fs *FileStore) Keys(_ context.Context) ([]string, error) {
	if fs.isClosed() {
		return nil, ErrClosed
	}
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list state directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

func (fs *FileStore) isClosed() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closed
}

// Watch reports keys changed by another process. Writes made through this
// store are filtered out. The channel closes when ctx is done.
func (fs *FileStore) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := watcher.Add(fs.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", fs.dir, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				key, changed := fs.externalChange(event)
				if !changed {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("state watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

func (fs *FileStore) externalChange(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)

	data, err := os.ReadFile(event.Name)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	own, wroteIt := fs.written[key]
	if err != nil {
		delete(fs.written, key)
		return key, true
	}
	if wroteIt && bytes.Equal(own, data) {
		return "", false
	}
	return key, true
}
