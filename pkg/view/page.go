package view

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var ErrElementNotFound = errors.New("element not found")

// Element is a single addressable node of the page.
type Element struct {
	ID      string   `json:"id"`
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
	Value   string   `json:"value,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

// HasClass reports whether class is set on the element.
func (e Element) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

// Snapshot is a point-in-time copy of the page.
type Snapshot struct {
	Body     []string  `json:"body"`
	Elements []Element `json:"elements"`
}

// Lookup returns the element with the given id from the snapshot.
func (s Snapshot) Lookup(id string) (Element, bool) {
	for _, el := range s.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// Page is a headless document: a fixed set of elements, addressed by id,
// plus the classes on the body. All mutations to an unknown id fail with
// ErrElementNotFound. Concurrent writers are allowed; the last one wins.
type Page struct {
	mu       sync.RWMutex
	elements map[string]*Element
	body     []string
	writes   uint64
}

func NewPage(ids ...string) *Page {
	p := &Page{elements: make(map[string]*Element, len(ids))}
	for _, id := range ids {
		p.elements[id] = &Element{ID: id}
	}
	return p
}

func (p *Page) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.elements[id]
	return ok
}

func (p *Page) SetText(id, text string) error {
	return p.mutate(id, func(el *Element) {
		el.Text = text
	})
}

func (p *Page) SetItems(id string, items []string) error {
	return p.mutate(id, func(el *Element) {
		el.Items = slices.Clone(items)
	})
}

func (p *Page) SetValue(id, value string) error {
	return p.mutate(id, func(el *Element) {
		el.Value = value
	})
}

func (p *Page) SetClasses(id string, classes ...string) error {
	return p.mutate(id, func(el *Element) {
		el.Classes = slices.Clone(classes)
	})
}

// SetMessage writes text and replaces the element classes with class.
func (p *Page) SetMessage(id, text, class string) error {
	return p.mutate(id, func(el *Element) {
		el.Text = text
		el.Classes = []string{class}
	})
}

// Reset clears the value of every listed element. Either all ids exist
// and are cleared, or nothing changes.
func (p *Page) Reset(ids ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range ids {
		if _, ok := p.elements[id]; !ok {
			return fmt.Errorf("%w: %s", ErrElementNotFound, id)
		}
	}
	for _, id := range ids {
		p.elements[id].Value = ""
	}
	p.writes++
	return nil
}

func (p *Page) Value(id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	el, ok := p.elements[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	return el.Value, nil
}

func (p *Page) Element(id string) (Element, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	el, ok := p.elements[id]
	if !ok {
		return Element{}, false
	}
	return copyElement(el), true
}

func (p *Page) SetBodyClasses(classes ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body = slices.Clone(classes)
	p.writes++
}

func (p *Page) BodyClasses() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.body)
}

// Writes counts successful mutations since the page was created.
func (p *Page) Writes() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.writes
}

func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(p.elements))
	elements := make([]Element, 0, len(ids))
	for _, id := range ids {
		elements = append(elements, copyElement(p.elements[id]))
	}

	return Snapshot{
		Body:     slices.Clone(p.body),
		Elements: elements,
	}
}

func (p *Page) mutate(id string, fn func(el *Element)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	el, ok := p.elements[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	fn(el)
	p.writes++
	return nil
}

func copyElement(el *Element) Element {
	return Element{
		ID:      el.ID,
		Text:    el.Text,
		Items:   slices.Clone(el.Items),
		Value:   el.Value,
		Classes: slices.Clone(el.Classes),
	}
}
