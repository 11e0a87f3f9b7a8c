// Package config loads server options two ways, following the same
// layering as the teacher's internal/cli/config: a project-default file
// read once at startup via github.com/spf13/viper, overlaid by
// pull-based values the client supplies through workspace/configuration
// requests.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ChktexOptions mirrors the client-configurable chktex integration
// knobs.
type ChktexOptions struct {
	OnEdit        bool `mapstructure:"on_edit"`
	OnOpenAndSave bool `mapstructure:"on_open_and_save"`
}

// Options is the merged set of server options: diagnostics timing,
// external-checker triggers, and feature-gating flags. Zero value is a
// valid, conservative configuration.
type Options struct {
	DiagnosticsDelay      time.Duration `mapstructure:"diagnostics_delay"`
	ExternalDebounceDelay time.Duration `mapstructure:"external_debounce_delay"`
	Chktex                ChktexOptions `mapstructure:"chktex"`
	EnableSemanticTokens  bool          `mapstructure:"enable_semantic_tokens"`
}

// Default returns the built-in defaults, used before any project file or
// client pull has been applied.
func Default() Options {
	return Options{
		DiagnosticsDelay:      300 * time.Millisecond,
		ExternalDebounceDelay: 0,
		EnableSemanticTokens:  false,
	}
}

// Load reads an optional texlab.toml/texlab.yaml from dir, overlaying it
// on top of Default(). A missing file is not an error — the defaults
// stand unchanged, the same tolerant behavior as the teacher's
// config.Load when conduit.yml is absent.
func Load(dir string) (Options, error) {
	opts := Default()

	v := viper.New()
	v.SetConfigName("texlab")
	v.AddConfigPath(dir)
	v.SetDefault("diagnostics_delay", opts.DiagnosticsDelay)
	v.SetDefault("external_debounce_delay", opts.ExternalDebounceDelay)
	v.SetDefault("enable_semantic_tokens", opts.EnableSemanticTokens)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return opts, fmt.Errorf("read texlab config: %w", err)
		}
		return opts, nil
	}

	if err := v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("unmarshal texlab config: %w", err)
	}
	return opts, nil
}

// Store holds the server's live Options behind a lock, so the
// orchestrator can swap in a freshly pulled configuration without
// disturbing readers mid-request.
type Store struct {
	mu   sync.RWMutex
	opts Options
}

// NewStore creates a Store seeded with initial.
func NewStore(initial Options) *Store {
	return &Store{opts: initial}
}

// Get returns the current options.
func (s *Store) Get() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Set replaces the current options.
func (s *Store) Set(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// PullFunc performs the actual workspace/configuration round trip to the
// client, returning the freshly pulled options.
type PullFunc func() (Options, error)

// Puller coalesces concurrent configuration pulls: callers that arrive
// while a pull is already in flight share its result rather than each
// issuing their own workspace/configuration request, keeping outgoing
// request ids from growing unbounded under a burst of triggers.
type Puller struct {
	store *Store
	pull  PullFunc

	mu       sync.Mutex
	inFlight *pullCall
}

type pullCall struct {
	done chan struct{}
	err  error
}

// NewPuller creates a Puller that applies successful pulls to store.
func NewPuller(store *Store, pull PullFunc) *Puller {
	return &Puller{store: store, pull: pull}
}

// Pull performs (or joins) one in-flight configuration pull and returns
// its error, if any. On success the Store is updated before Pull
// returns.
func (p *Puller) Pull() error {
	p.mu.Lock()
	if p.inFlight != nil {
		call := p.inFlight
		p.mu.Unlock()
		<-call.done
		return call.err
	}

	call := &pullCall{done: make(chan struct{})}
	p.inFlight = call
	p.mu.Unlock()

	opts, err := p.pull()
	if err == nil {
		p.store.Set(opts)
	}
	call.err = err

	p.mu.Lock()
	p.inFlight = nil
	p.mu.Unlock()
	close(call.done)

	return err
}

// FileResolver locates on-disk documents for workspace.Resolver by
// reading the file named by the URI's path, grounded on the teacher's
// filesystem-watch usage of github.com/fsnotify/fsnotify for detecting
// changes to files it has already resolved once.
type FileResolver struct {
	mu       sync.Mutex
	watched  map[string]struct{}
	onChange func(path string)
}

// NewFileResolver creates a FileResolver. onChange, if non-nil, is
// invoked whenever a previously resolved file changes on disk; pair it
// with a ResolvedFileWatcher to actually receive fsnotify events, since
// this package only tracks which paths have been resolved at least
// once.
func NewFileResolver(onChange func(path string)) *FileResolver {
	return &FileResolver{watched: make(map[string]struct{}), onChange: onChange}
}

// Resolve reads path's contents. On success it is added to the set of
// paths future file-system events should be checked against.
func (r *FileResolver) Resolve(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	r.mu.Lock()
	r.watched[path] = struct{}{}
	r.mu.Unlock()

	return string(data), true
}

// NotifyChanged invokes onChange for path if it has previously been
// resolved. Intended to be called from an fsnotify watcher's event loop.
func (r *FileResolver) NotifyChanged(path string) {
	r.mu.Lock()
	_, ok := r.watched[path]
	r.mu.Unlock()

	if ok && r.onChange != nil {
		r.onChange(path)
	}
}

// WatchedPaths returns every path resolved so far, for seeding an
// fsnotify watcher's watch list.
func (r *FileResolver) WatchedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.watched))
	for p := range r.watched {
		out = append(out, p)
	}
	return out
}
