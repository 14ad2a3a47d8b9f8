package confstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"github.com/halware/halcommon/logging"
)

const (
	// DefaultDebounceInterval is the quiet period after a file change event
	// before the store re-reads the file.  Successive events within this
	// interval reset the clock, so a reload only happens once writes settle.
	DefaultDebounceInterval = 100 * time.Millisecond
)

var (
	ErrorNoSource = errors.New("A Source is required")
)

// Options configures a Store.  Only Source is required.
type Options struct {
	// Source supplies the configuration data.  A *File source is watched for
	// changes after a successful initial read.  All other sources are read
	// exactly once.
	Source Source

	// Logger receives diagnostic output.  If unset, logging.DefaultLogger() is used.
	Logger log.Logger

	// DebounceInterval overrides DefaultDebounceInterval when positive.
	DebounceInterval time.Duration

	// Reloads is incremented on each successful hot reload.  Optional.
	Reloads metrics.Counter

	// ParseFailures is incremented whenever a hot reload fails to read or
	// parse the file.  Optional.
	ParseFailures metrics.Counter
}

// Store holds a parsed JSON configuration document and exposes keyed lookup
// against it.  The current document is held behind an atomic value, so lookups
// never block reloads and vice versa.
type Store struct {
	source   Source
	logger   log.Logger
	debounce time.Duration

	reloads       metrics.Counter
	parseFailures metrics.Counter

	value atomic.Value

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New constructs a Store from the given options, performing the initial read
// synchronously.  For *File sources, a missing file is not an error: the store
// starts out empty and no watch is established.  Any other read or parse
// failure during initialization is returned as a *ReadError.
func New(o Options) (*Store, error) {
	if o.Source == nil {
		return nil, ErrorNoSource
	}

	s := &Store{
		source:        o.Source,
		logger:        o.Logger,
		debounce:      o.DebounceInterval,
		reloads:       o.Reloads,
		parseFailures: o.ParseFailures,
	}

	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}

	if s.debounce <= 0 {
		s.debounce = DefaultDebounceInterval
	}

	if s.reloads == nil {
		s.reloads = discard.NewCounter()
	}

	if s.parseFailures == nil {
		s.parseFailures = discard.NewCounter()
	}

	s.value.Store(map[string]interface{}{})

	data, err := ReadAll(o.Source)
	if err != nil {
		if file, ok := o.Source.(*File); ok && os.IsNotExist(err) {
			logging.Info(s.logger).Log(
				logging.MessageKey(), "configuration file not found, continuing with empty configuration",
				"file", file.Path,
			)

			return s, nil
		}

		return nil, &ReadError{Location: o.Source.Location(), Err: err}
	}

	document, err := parseDocument(data)
	if err != nil {
		return nil, &ReadError{Location: o.Source.Location(), Err: err}
	}

	s.value.Store(document)

	if file, ok := o.Source.(*File); ok {
		if err := s.watch(file.Path); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// parseDocument unmarshals a configuration document, requiring the top level
// to be a JSON object.
func parseDocument(data []byte) (map[string]interface{}, error) {
	var document map[string]interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, err
	}

	return document, nil
}

// Get returns the JSON value at the given key path, or nil if any segment of
// the path is missing.  Invoked with no arguments, Get returns the entire
// configuration document.
func (s *Store) Get(keyPath ...string) interface{} {
	var current interface{} = s.value.Load()
	for _, key := range keyPath {
		document, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}

		if current, ok = document[key]; !ok {
			return nil
		}
	}

	return current
}

// GetString returns the value at the given key path coerced to a string.
// A value that is already a string is returned unchanged.  Other values are
// JSON-stringified, with a fast path through spf13/cast for scalars.  A value
// that cannot be marshaled results in a *CoercionError.  A missing value
// yields the empty string with no error, mirroring Get's nil result.
func (s *Store) GetString(keyPath ...string) (string, error) {
	value := s.Get(keyPath...)
	if value == nil {
		return "", nil
	}

	if text, ok := value.(string); ok {
		return text, nil
	}

	if text, err := cast.ToStringE(value); err == nil {
		return text, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", &CoercionError{Key: strings.Join(keyPath, "."), Err: err}
	}

	return string(data), nil
}

// Unmarshal decodes the subtree at the given key path into target using
// mapstructure.  A missing subtree leaves target untouched.
func (s *Store) Unmarshal(target interface{}, keyPath ...string) error {
	value := s.Get(keyPath...)
	if value == nil {
		return nil
	}

	return mapstructure.Decode(value, target)
}

// Close stops the file watcher, if any.  Lookups against the last parsed
// configuration remain valid after Close.
func (s *Store) Close() error {
	if s.shutdown != nil {
		s.shutdownOnce.Do(func() {
			close(s.shutdown)
		})
	}

	return nil
}

// watch establishes an fsnotify watch on the file's parent directory.  Editors
// and deployment tooling commonly replace files via rename, which drops any
// watch held directly on the file.
func (s *Store) watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	s.shutdown = make(chan struct{})
	go s.monitor(watcher, filepath.Clean(path))
	return nil
}

func (s *Store) monitor(watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != path {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}

				timer.Reset(s.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			s.reload(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			logging.Error(s.logger).Log(
				logging.MessageKey(), "configuration watch error",
				logging.ErrorKey(), err,
			)

		case <-s.shutdown:
			return
		}
	}
}

// reload re-reads and re-parses the watched file.  Failures of any kind leave
// the last successfully parsed configuration in place.
func (s *Store) reload(path string) {
	data, err := os.ReadFile(path)
	if err == nil {
		var document map[string]interface{}
		if document, err = parseDocument(data); err == nil {
			s.value.Store(document)
			s.reloads.Add(1.0)
			logging.Debug(s.logger).Log(
				logging.MessageKey(), "configuration reloaded",
				"file", path,
			)

			return
		}
	}

	s.parseFailures.Add(1.0)
	logging.Error(s.logger).Log(
		logging.MessageKey(), "configuration reload failed, retaining previous configuration",
		"file", path,
		logging.ErrorKey(), err,
	)
}
