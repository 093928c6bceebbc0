// Package alert mirrors alert content into off-screen live regions, one per
// politeness level, so assistive technology announces it.
//
// Mutations are batched: every Register, Update, ChangeLevel or Unregister restarts
// a debounce timer, and only when it fires is each changed region rendered once.
// Several alerts mounting together therefore produce a single announcement per
// level. A Registry is an explicit object owned by the application root, so
// independent UI trees can each have their own.
package alert

import (
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

// DefaultDebounce is the batching window.
const DefaultDebounce = 500 * time.Millisecond

// ErrUnknownKey is returned for a key that is not registered.
var ErrUnknownKey = errors.New("unknown alert key")

// Level is the politeness of a live region.
type Level string

const (
	Polite    Level = "polite"
	Assertive Level = "assertive"
)

// Levels lists every level in render order.
var Levels = []Level{Polite, Assertive} //nolint:gochecknoglobals

// Role is the ARIA role of the level's region.
func (l Level) Role() string {
	if l == Assertive {
		return "alert"
	}

	return "status"
}

// Attributes are the live region attributes for the level.
func (l Level) Attributes() map[string]string {
	return map[string]string{
		"data-reach-live-" + string(l): "",
		"role":                         l.Role(),
		"aria-live":                    string(l),
		"aria-relevant":                "additions text",
		"aria-atomic":                  "false",
	}
}

// Key identifies a registered alert. IDs are per level and increase from 0.
type Key struct {
	Level Level
	ID    int
}

func (k Key) String() string {
	return string(k.Level) + "-" + strconv.Itoa(k.ID)
}

// Entry is one alert inside a region.
type Entry struct {
	Key     Key
	Content string
}

// UpdateHash writes the entry into h.
func (e Entry) UpdateHash(h hash.Hash) error {
	_, err := fmt.Fprintf(h, "%d\x00%s\x00", e.Key.ID, e.Content)

	return err
}

// Renderer performs the DOM work.
type Renderer interface {
	// Mount creates the region for level with the given attributes.
	Mount(level Level, attrs map[string]string) error
	// Render replaces the region's content with entries, in key order.
	Render(level Level, entries []Entry) error
	// Unmount removes the region. It is only called when empty regions are not kept.
	Unmount(level Level) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the real clock.
func WithClock(clock host.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(r *Registry) {
		r.debounce = d
	}
}

// WithKeepEmptyRegions controls whether a region emptied by Unregister stays
// mounted. The default is true.
func WithKeepEmptyRegions(keep bool) Option {
	return func(r *Registry) {
		r.keepEmpty = keep
	}
}

// Registry owns the live regions of one UI tree.
type Registry struct {
	renderer  Renderer
	clock     host.Clock
	debounce  time.Duration
	keepEmpty bool

	// generation invalidates timers that were replaced after they started firing.
	generation *atomic.Uint64

	mu       sync.Mutex
	nextID   map[Level]int
	entries  map[Level]map[int]string
	mounted  map[Level]bool
	rendered map[Level]uint64
	timer    host.Timer
	closed   bool

	flushMu sync.Mutex
}

// New creates a registry that renders through renderer.
func New(renderer Renderer, opts ...Option) *Registry {
	r := &Registry{
		renderer:   renderer,
		clock:      host.RealClock{},
		debounce:   DefaultDebounce,
		keepEmpty:  true,
		generation: atomic.NewUint64(0),
		nextID:     make(map[Level]int),
		entries:    make(map[Level]map[int]string),
		mounted:    make(map[Level]bool),
		rendered:   make(map[Level]uint64),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds content at level and returns its key.
func (r *Registry) Register(level Level, content string) Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.add(level, content)
	r.schedule()

	return key
}

// Update replaces the content of a registered alert.
func (r *Registry) Update(key Key, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key.Level][key.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	r.entries[key.Level][key.ID] = content
	r.schedule()

	return nil
}

// ChangeLevel moves an alert to another level. The alert gets a new key there.
func (r *Registry) ChangeLevel(key Key, level Level) (Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, ok := r.entries[key.Level][key.ID]
	if !ok {
		return Key{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if key.Level == level {
		return key, nil
	}

	delete(r.entries[key.Level], key.ID)
	newKey := r.add(level, content)
	r.schedule()

	return newKey, nil
}

// Unregister removes an alert and reports whether it was registered.
func (r *Registry) Unregister(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key.Level][key.ID]; !ok {
		return false
	}

	delete(r.entries[key.Level], key.ID)
	r.schedule()

	return true
}

// Entries returns the registered alerts of a level in key order.
func (r *Registry) Entries(level Level) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot(level)
}

// Flush renders pending changes now and cancels the debounce timer.
func (r *Registry) Flush() error {
	r.mu.Lock()
	r.stopTimer()
	r.mu.Unlock()

	return r.flush()
}

// Close cancels the pending flush. Later mutations are recorded but never
// rendered unless Flush is called.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.stopTimer()
}

func (r *Registry) add(level Level, content string) Key {
	if r.entries[level] == nil {
		r.entries[level] = make(map[int]string)
	}

	id := r.nextID[level]
	r.nextID[level] = id + 1
	r.entries[level][id] = content

	return Key{Level: level, ID: id}
}

func (r *Registry) snapshot(level Level) []Entry {
	ids := slices.Sorted(maps.Keys(r.entries[level]))

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, Entry{Key: Key{Level: level, ID: id}, Content: r.entries[level][id]})
	}

	return entries
}

// schedule restarts the debounce timer. Callers hold mu.
func (r *Registry) schedule() {
	if r.closed {
		return
	}

	r.stopTimer()

	gen := r.generation.Inc()
	r.timer = r.clock.AfterFunc(r.debounce, func() {
		if r.generation.Load() != gen {
			return
		}

		err := r.flush()
		if err != nil {
			slog.Error("Failed to render live regions", "error", err)
		}
	})
}

func (r *Registry) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	r.generation.Inc()
}

type regionWork struct {
	level       Level
	entries     []Entry
	fingerprint uint64
	mount       bool
	unmount     bool
}

func (r *Registry) flush() error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	work := r.plan()
	r.mu.Unlock()

	var errs []error

	for _, w := range work {
		err := r.apply(w)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s region: %w", w.level, err))

			continue
		}

		r.mu.Lock()
		r.commit(w)
		r.mu.Unlock()
	}

	return errors.Join(errs...)
}

// plan decides what each level needs. Callers hold mu.
func (r *Registry) plan() []regionWork {
	var work []regionWork

	for _, level := range r.levels() {
		entries := r.snapshot(level)
		fingerprint := fingerprintOf(entries)
		mounted := r.mounted[level]

		switch {
		case len(entries) == 0 && !mounted:
			continue
		case len(entries) == 0 && !r.keepEmpty:
			work = append(work, regionWork{level: level, unmount: true})
		case mounted && r.rendered[level] == fingerprint:
			rendersTotal.WithLabelValues(string(level), "unchanged").Inc()
		default:
			work = append(work, regionWork{
				level:       level,
				entries:     entries,
				fingerprint: fingerprint,
				mount:       !mounted,
			})
		}
	}

	return work
}

func (r *Registry) apply(w regionWork) error {
	if w.unmount {
		return r.renderer.Unmount(w.level)
	}

	if w.mount {
		err := r.renderer.Mount(w.level, w.level.Attributes())
		if err != nil {
			return err
		}
	}

	err := r.renderer.Render(w.level, w.entries)
	if err != nil {
		return err
	}

	rendersTotal.WithLabelValues(string(w.level), "rendered").Inc()

	return nil
}

func (r *Registry) commit(w regionWork) {
	if w.unmount {
		delete(r.mounted, w.level)
		delete(r.rendered, w.level)

		return
	}

	r.mounted[w.level] = true
	r.rendered[w.level] = w.fingerprint
}

// levels returns the known levels first, then any custom ones in name order.
func (r *Registry) levels() []Level {
	seen := make(map[Level]bool)
	levels := slices.Clone(Levels)

	for _, l := range levels {
		seen[l] = true
	}

	var extra []Level

	for l := range r.entries {
		if !seen[l] {
			extra = append(extra, l)
		}
	}

	for l := range r.mounted {
		if !seen[l] && !slices.Contains(extra, l) {
			extra = append(extra, l)
		}
	}

	slices.Sort(extra)

	return append(levels, extra...)
}

func fingerprintOf(entries []Entry) uint64 {
	h := xxh3.New()

	for _, e := range entries {
		_ = e.UpdateHash(h)
	}

	return h.Sum64()
}
