package mapview

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_GroupsStartAttached(t *testing.T) {
	m := New("Heatmap", "Earthquakes")

	assert.True(t, m.HasLayer("Heatmap"))
	assert.True(t, m.HasLayer("Earthquakes"))
	assert.False(t, m.HasLayer("Orogens"))
	assert.Equal(t, []string{"Heatmap", "Earthquakes"}, m.Names())
}

func TestMap_AddAndClear(t *testing.T) {
	m := New("Earthquakes")
	m.Add("Earthquakes",
		NewCircle(1, 2, CircleStyle{Radius: 10}, Popup{Title: "a"}),
		NewCircle(3, 4, CircleStyle{Radius: 20}, Popup{Title: "b"}),
	)
	require.Equal(t, 2, m.Len("Earthquakes"))

	m.Clear("Earthquakes")
	assert.Equal(t, 0, m.Len("Earthquakes"))
	assert.True(t, m.HasLayer("Earthquakes"), "clear must not change visibility")
}

func TestMap_RemoveKeepsPrimitives(t *testing.T) {
	m := New("Heatmap")
	m.Add("Heatmap", NewHeatPoint(10, 20, 8))

	m.RemoveFromMap("Heatmap")
	assert.False(t, m.HasLayer("Heatmap"))
	assert.Equal(t, 1, m.Len("Heatmap"))

	m.AddToMap("Heatmap")
	assert.True(t, m.HasLayer("Heatmap"))
}

func TestMap_UnknownGroupRegisteredDetached(t *testing.T) {
	m := New()
	m.Add("Orogens", NewPolyline([]Coord{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}, LineStyle{Color: "steelblue", Weight: 2}))

	assert.False(t, m.HasLayer("Orogens"))
	snap, ok := m.Snapshot("Orogens")
	require.True(t, ok)
	assert.False(t, snap.Visible)
	assert.Len(t, snap.Primitives, 1)
}

func TestMap_SnapshotIsCopy(t *testing.T) {
	m := New("Heatmap")
	m.SetHeatOptions("Heatmap", HeatOptions{Radius: 40, Gradient: map[string]string{"1.0": "darkred"}})
	m.Add("Heatmap", NewHeatPoint(1, 1, 4))

	snap, ok := m.Snapshot("Heatmap")
	require.True(t, ok)
	snap.Primitives[0] = NewHeatPoint(9, 9, 9)
	snap.HeatOptions.Gradient["1.0"] = "blue"

	again, _ := m.Snapshot("Heatmap")
	assert.InDelta(t, 1.0, again.Primitives[0].Heat.Lat, 0)
	assert.Equal(t, "darkred", again.HeatOptions.Gradient["1.0"])
	assert.Equal(t, CRSWGS84, again.CRS)
}

func TestMap_SnapshotUnknown(t *testing.T) {
	_, ok := New().Snapshot("nope")
	assert.False(t, ok)
}

func TestMap_EmptySnapshotHasNonNilPrimitives(t *testing.T) {
	snap, ok := New("Earthquakes").Snapshot("Earthquakes")
	require.True(t, ok)
	assert.NotNil(t, snap.Primitives)
	assert.Empty(t, snap.Primitives)
}

func TestMap_RevisionAdvancesOnChange(t *testing.T) {
	m := New("Heatmap")
	before, _ := m.Snapshot("Heatmap")

	m.AddToMap("Heatmap") // already attached
	same, _ := m.Snapshot("Heatmap")
	assert.Equal(t, before.Revision, same.Revision)

	m.Add("Heatmap", NewHeatPoint(0, 0, 1))
	after, _ := m.Snapshot("Heatmap")
	assert.Greater(t, after.Revision, before.Revision)
}

func TestMap_ConcurrentReadersAndWriter(t *testing.T) {
	m := New("Heatmap")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			m.Clear("Heatmap")
			m.Add("Heatmap", NewHeatPoint(float64(i%90), 0, 1))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = m.Snapshots()
				_ = m.HasLayer("Heatmap")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len("Heatmap"))
}

func TestMap_UpdateIsOneRevision(t *testing.T) {
	m := New("Earthquakes")
	m.RemoveFromMap("Earthquakes")
	before, _ := m.Snapshot("Earthquakes")

	m.Update("Earthquakes", func(g *Group) {
		assert.False(t, g.Attached())
		g.Clear()
		g.AddToMap()
		g.Add(NewHeatPoint(1, 1, 1), NewHeatPoint(2, 2, 2))
		g.RemoveFromMap()
	})

	after, _ := m.Snapshot("Earthquakes")
	assert.Equal(t, before.Revision+1, after.Revision)
	assert.False(t, after.Visible)
	assert.Len(t, after.Primitives, 2)
}

func TestMap_UpdateHidesIntermediateState(t *testing.T) {
	m := New("Earthquakes")
	m.Update("Earthquakes", func(g *Group) {
		g.Add(NewHeatPoint(0, 0, 1))
		g.RemoveFromMap()
	})

	var (
		wg      sync.WaitGroup
		visible atomic.Int64
		empty   atomic.Int64
	)
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, _ := m.Snapshot("Earthquakes")
				if snap.Visible {
					visible.Add(1)
				}
				if len(snap.Primitives) == 0 {
					empty.Add(1)
				}
			}
		}()
	}
	for i := 0; i < 2000; i++ {
		m.Update("Earthquakes", func(g *Group) {
			g.Clear()
			g.AddToMap()
			g.Add(NewHeatPoint(float64(i%90), 0, 1))
			g.RemoveFromMap()
		})
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, visible.Load(), "hidden group was observed attached")
	assert.Zero(t, empty.Load(), "group was observed cleared")
}
