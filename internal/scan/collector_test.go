package scan

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectorAddKeepsUnclassifiedOnly(t *testing.T) {
	c := NewCollector()

	c.OnAdd(PlaneObservation{ID: "a", Classification: ClassificationUnclassified, ExtentWidth: 1, ExtentHeight: 2})
	c.OnAdd(PlaneObservation{ID: "b", Classification: ClassificationWall, ExtentWidth: 3, ExtentHeight: 4})
	c.OnAdd(PlaneObservation{ID: "c", Classification: ClassificationFloor, ExtentWidth: 5, ExtentHeight: 6})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if got := c.Observations()[0].ID; got != "a" {
		t.Errorf("kept observation ID = %q, want a", got)
	}
}

func TestCollectorAddDeduplicatesByID(t *testing.T) {
	c := NewCollector()

	c.OnAdd(PlaneObservation{ID: "a", ExtentWidth: 1, ExtentHeight: 2})
	c.OnAdd(PlaneObservation{ID: "a", ExtentWidth: 9, ExtentHeight: 9})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	// A duplicate add is dropped entirely; it does not update extents.
	obs := c.Observations()[0]
	if obs.ExtentWidth != 1 || obs.ExtentHeight != 2 {
		t.Errorf("extents = (%v, %v), want (1, 2)", obs.ExtentWidth, obs.ExtentHeight)
	}
}

func TestCollectorUpdateOverwritesInPlace(t *testing.T) {
	c := NewCollector()
	c.OnAdd(PlaneObservation{ID: "a", ExtentWidth: 1, ExtentHeight: 2, Center: Vector3{X: 1}})

	c.OnUpdate(PlaneObservation{
		ID:           "a",
		ExtentWidth:  1.5,
		ExtentHeight: 2.5,
		Center:       Vector3{X: 1.1},
		Normal:       Vector3{Z: 1},
	})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	got := c.Observations()[0]
	want := PlaneObservation{
		ID:           "a",
		ExtentWidth:  1.5,
		ExtentHeight: 2.5,
		Center:       Vector3{X: 1.1},
		Normal:       Vector3{Z: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("observation mismatch (-want +got):\n%s", diff)
	}
}

// A detector may classify a surface only after its add event; the update
// for an unknown unclassified surface is an implicit add.
func TestCollectorUpdateImplicitAdd(t *testing.T) {
	c := NewCollector()

	c.OnUpdate(PlaneObservation{ID: "late", Classification: ClassificationUnclassified, ExtentWidth: 2, ExtentHeight: 3})
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after implicit add", c.Len())
	}

	// An unknown surface with a known classification is not admitted.
	c.OnUpdate(PlaneObservation{ID: "wall", Classification: ClassificationWall, ExtentWidth: 4, ExtentHeight: 5})
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (classified update must not add)", c.Len())
	}
}

func TestCollectorPreservesInsertionOrder(t *testing.T) {
	c := NewCollector()

	for i := 0; i < 5; i++ {
		c.OnAdd(PlaneObservation{ID: fmt.Sprintf("p%d", i)})
	}
	// Updating an early surface must not move it.
	c.OnUpdate(PlaneObservation{ID: "p1", ExtentWidth: 7})

	obs := c.Observations()
	for i, o := range obs {
		want := fmt.Sprintf("p%d", i)
		if o.ID != want {
			t.Errorf("observations[%d].ID = %q, want %q", i, o.ID, want)
		}
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.OnAdd(PlaneObservation{ID: "a"})
	c.OnAdd(PlaneObservation{ID: "b"})

	c.Reset()

	if c.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", c.Len())
	}
	// The same IDs are accepted again after a reset.
	c.OnAdd(PlaneObservation{ID: "a"})
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollectorObservationsReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.OnAdd(PlaneObservation{ID: "a", ExtentWidth: 1})

	snapshot := c.Observations()
	snapshot[0].ExtentWidth = 99

	if got := c.Observations()[0].ExtentWidth; got != 1 {
		t.Errorf("internal extent mutated through snapshot: %v", got)
	}
}
