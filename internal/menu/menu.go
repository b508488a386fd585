// Package menu keeps the page's select elements. The first option of each
// select is its placeholder and survives every repopulation.
package menu

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Select element ids on the page.
const (
	SelectTimePeriod = "selectTimePeriod"
	SelectMagnitude  = "selectMagnitude"
	SelectDepth      = "selectDepth"
)

// ErrUnknownSelect is returned for a select id that was never registered.
var ErrUnknownSelect = errors.New("unknown select")

// Select is one drop-down menu: its id, options in display order and the
// option currently shown as chosen.
type Select struct {
	ID       string   `json:"id"`
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
}

// Board is the set of selects on the page. It is safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	selects map[string]*Select
	order   []string
}

// NewBoard registers one select per id, each holding only its placeholder.
// placeholders maps id to first option; ids without one start empty.
func NewBoard(ids []string, placeholders map[string]string) *Board {
	b := &Board{selects: make(map[string]*Select, len(ids))}
	for _, id := range ids {
		s := &Select{ID: id, Options: []string{}}
		if p, ok := placeholders[id]; ok {
			s.Options = append(s.Options, p)
			s.Selected = p
		}
		b.selects[id] = s
		b.order = append(b.order, id)
	}
	return b
}

// Repopulate keeps the first option of select id, drops the rest and
// appends labels in order. The placeholder becomes the chosen option.
func (b *Board) Repopulate(id string, labels []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.selects[id]
	if !ok {
		return fmt.Errorf("repopulate %q: %w", id, ErrUnknownSelect)
	}
	opts := make([]string, 0, len(labels)+1)
	if len(s.Options) > 0 {
		opts = append(opts, s.Options[0])
	}
	opts = append(opts, labels...)
	s.Options = opts
	s.Selected = ""
	if len(opts) > 0 {
		s.Selected = opts[0]
	}
	return nil
}

// Choose marks value as the chosen option of select id. Values that are
// not among the options are ignored and false is returned.
func (b *Board) Choose(id, value string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.selects[id]
	if !ok || !slices.Contains(s.Options, value) {
		return false
	}
	s.Selected = value
	return true
}

// Get returns a copy of select id.
func (b *Board) Get(id string) (Select, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.selects[id]
	if !ok {
		return Select{}, false
	}
	return copySelect(s), true
}

// All returns copies of every select in registration order.
func (b *Board) All() []Select {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Select, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, copySelect(b.selects[id]))
	}
	return out
}

func copySelect(s *Select) Select {
	return Select{ID: s.ID, Options: slices.Clone(s.Options), Selected: s.Selected}
}
