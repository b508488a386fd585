// Package mapview holds the in-memory layer registry that stands in for the
// browser map widget. Renderers write primitives into named layer groups;
// HTTP handlers read JSON snapshots of them.
package mapview

import (
	"slices"
	"sync"
)

// Map is a registry of named layer groups. Each group has a list of
// primitives and an attached flag that mirrors whether the widget shows it.
// Writers and readers may run on different goroutines.
type Map struct {
	mu       sync.RWMutex
	groups   map[string]*Group
	order    []string
	revision uint64
}

// Group is one layer group as seen from inside an Update callback. Its
// methods are only safe to call within that callback.
type Group struct {
	attached   bool
	primitives []Primitive
	heat       *HeatOptions
}

// Attached reports whether the group is shown.
func (g *Group) Attached() bool { return g.attached }

// Clear drops every primitive and heat setting. Visibility is unchanged.
func (g *Group) Clear() {
	g.primitives = nil
	g.heat = nil
}

// AddToMap attaches the group.
func (g *Group) AddToMap() { g.attached = true }

// RemoveFromMap detaches the group. Its primitives are kept.
func (g *Group) RemoveFromMap() { g.attached = false }

// Add appends primitives.
func (g *Group) Add(primitives ...Primitive) {
	g.primitives = append(g.primitives, primitives...)
}

// SetHeatOptions sets how the group blends its heat points.
func (g *Group) SetHeatOptions(opts HeatOptions) {
	opts.Gradient = cloneGradient(opts.Gradient)
	g.heat = &opts
}

// LayerSnapshot is a read-only copy of one layer group.
type LayerSnapshot struct {
	Name        string       `json:"name"`
	Visible     bool         `json:"visible"`
	Revision    uint64       `json:"revision"`
	CRS         string       `json:"crs"`
	HeatOptions *HeatOptions `json:"heatOptions,omitempty"`
	Primitives  []Primitive  `json:"primitives"`
}

// New builds a map with the given layer groups registered and attached.
func New(names ...string) *Map {
	m := &Map{groups: make(map[string]*Group, len(names))}
	for _, name := range names {
		m.ensure(name).attached = true
	}
	return m
}

// ensure returns the named group, registering it detached if unknown.
// Callers must hold the write lock.
func (m *Map) ensure(name string) *Group {
	g, ok := m.groups[name]
	if !ok {
		g = &Group{}
		m.groups[name] = g
		m.order = append(m.order, name)
	}
	return g
}

// HasLayer reports whether the named group is currently attached.
func (m *Map) HasLayer(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[name]
	return ok && g.attached
}

// Update runs fn on the named group under the write lock and bumps the
// revision once. Readers see the group as it was before fn or after it,
// never in between.
func (m *Map) Update(name string, fn func(g *Group)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.ensure(name))
	m.revision++
}

// Clear removes every primitive from the named group. Visibility is unchanged.
func (m *Map) Clear(name string) {
	m.Update(name, (*Group).Clear)
}

// AddToMap attaches the named group.
func (m *Map) AddToMap(name string) {
	m.setAttached(name, true)
}

// RemoveFromMap detaches the named group. Its primitives are kept.
func (m *Map) RemoveFromMap(name string) {
	m.setAttached(name, false)
}

func (m *Map) setAttached(name string, attached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.ensure(name)
	if g.attached != attached {
		g.attached = attached
		m.revision++
	}
}

// Add appends primitives to the named group.
func (m *Map) Add(name string, primitives ...Primitive) {
	if len(primitives) == 0 {
		return
	}
	m.Update(name, func(g *Group) { g.Add(primitives...) })
}

// SetHeatOptions sets how the named group blends its heat points.
func (m *Map) SetHeatOptions(name string, opts HeatOptions) {
	m.Update(name, func(g *Group) { g.SetHeatOptions(opts) })
}

// Len returns the number of primitives in the named group.
func (m *Map) Len(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[name]; ok {
		return len(g.primitives)
	}
	return 0
}

// Names returns every registered group name in registration order.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Snapshot copies the named group. It returns false for unknown names.
func (m *Map) Snapshot(name string) (LayerSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[name]
	if !ok {
		return LayerSnapshot{}, false
	}
	return m.snapshot(name, g), true
}

// Snapshots copies every group in registration order.
func (m *Map) Snapshots() []LayerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LayerSnapshot, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.snapshot(name, m.groups[name]))
	}
	return out
}

func (m *Map) snapshot(name string, g *Group) LayerSnapshot {
	s := LayerSnapshot{
		Name:       name,
		Visible:    g.attached,
		Revision:   m.revision,
		CRS:        CRSWGS84,
		Primitives: slices.Clone(g.primitives),
	}
	if s.Primitives == nil {
		s.Primitives = []Primitive{}
	}
	if g.heat != nil {
		opts := *g.heat
		opts.Gradient = cloneGradient(opts.Gradient)
		s.HeatOptions = &opts
	}
	return s
}

func cloneGradient(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
