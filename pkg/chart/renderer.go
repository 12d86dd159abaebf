package chart

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

type Kind string

const (
	Bar              Kind = "bar"
	LineWithForecast Kind = "line"
	Pie              Kind = "pie"
)

var (
	ErrTargetNotFound  = errors.New("chart target not found")
	ErrInvalidDatasets = errors.New("invalid chart datasets")
	ErrNoChart         = errors.New("no chart bound to slot")
)

// Dataset is one named series. A nil value is a gap.
type Dataset struct {
	Label  string
	Values []*float64
}

type Options struct {
	Title  string
	Width  int
	Height int
}

// Targets tells the renderer which slots exist.
type Targets interface {
	Has(id string) bool
}

// Handle is a chart instance bound to a slot.
type Handle struct {
	id       uint64
	slot     string
	kind     Kind
	labels   []string
	datasets []Dataset
	options  Options

	mu        sync.Mutex
	destroyed bool
}

func (h *Handle) ID() uint64 { return h.id }
func (h *Handle) Slot() string { return h.slot }
func (h *Handle) Kind() Kind { return h.kind }
func (h *Handle) Options() Options { return h.options }
func (h *Handle) Labels() []string { return slices.Clone(h.labels) }
func (h *Handle) Datasets() []Dataset {
	out := make([]Dataset, len(h.datasets))
	for i, ds := range h.datasets {
		out[i] = Dataset{Label: ds.Label, Values: slices.Clone(ds.Values)}
	}
	return out
}

func (h *Handle) Destroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}

func (h *Handle) destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed = true
}

// Renderer keeps at most one live chart per slot for the lifetime of the
// page session.
type Renderer struct {
	targets Targets

	mu      sync.Mutex
	nextID  uint64
	handles map[string]*Handle
}

func NewRenderer(targets Targets) *Renderer {
	return &Renderer{
		targets: targets,
		handles: make(map[string]*Handle),
	}
}

// Draw binds a new chart to slot, destroying whatever was bound there.
func (r *Renderer) Draw(kind Kind, slot string, labels []string, datasets []Dataset, opts Options) (*Handle, error) {
	if r.targets != nil && !r.targets.Has(slot) {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, slot)
	}
	if err := validate(kind, labels, datasets); err != nil {
		return nil, err
	}

	copied := make([]Dataset, len(datasets))
	for i, ds := range datasets {
		copied[i] = Dataset{Label: ds.Label, Values: slices.Clone(ds.Values)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.handles[slot]; ok {
		prev.destroy()
		delete(r.handles, slot)
	}

	r.nextID++
	h := &Handle{
		id:       r.nextID,
		slot:     slot,
		kind:     kind,
		labels:   slices.Clone(labels),
		datasets: copied,
		options:  withDefaults(opts),
	}
	r.handles[slot] = h
	return h, nil
}

// Destroy unbinds the chart from slot, if any.
func (r *Renderer) Destroy(slot string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[slot]; ok {
		h.destroy()
		delete(r.handles, slot)
	}
}

func (r *Renderer) Handle(slot string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[slot]
	return h, ok
}

// Live returns the number of live charts across all slots.
func (r *Renderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

func validate(kind Kind, labels []string, datasets []Dataset) error {
	want := 1
	switch kind {
	case Bar, Pie:
	case LineWithForecast:
		want = 2
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDatasets, kind)
	}
	if len(datasets) != want {
		return fmt.Errorf("%w: %s chart needs %d datasets, got %d", ErrInvalidDatasets, kind, want, len(datasets))
	}
	for _, ds := range datasets {
		if len(ds.Values) > len(labels) {
			return fmt.Errorf("%w: dataset %q has %d values for %d labels",
				ErrInvalidDatasets, ds.Label, len(ds.Values), len(labels))
		}
	}
	return nil
}

func withDefaults(opts Options) Options {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	return opts
}
