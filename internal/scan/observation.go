// Package scan implements the box scanning core: a session state machine
// that gates collection of detected planar surfaces, and the estimator
// that turns two roughly orthogonal surface extents into a sorted box
// dimension triple.
package scan

// Classification is the categorical label the surface-detection subsystem
// assigns to a detected planar surface. Only unclassified surfaces are of
// interest for box estimation: a surface the detector recognises as part
// of the room (wall, floor, furniture) cannot be a face of the scanned box.
type Classification int

const (
	// ClassificationUnclassified marks a surface the detector could not
	// attribute to the surrounding environment.
	ClassificationUnclassified Classification = iota
	ClassificationWall
	ClassificationFloor
	ClassificationCeiling
	ClassificationTable
	ClassificationSeat
	ClassificationWindow
	ClassificationDoor
)

// String returns a human-readable label for the classification.
func (c Classification) String() string {
	switch c {
	case ClassificationUnclassified:
		return "unclassified"
	case ClassificationWall:
		return "wall"
	case ClassificationFloor:
		return "floor"
	case ClassificationCeiling:
		return "ceiling"
	case ClassificationTable:
		return "table"
	case ClassificationSeat:
		return "seat"
	case ClassificationWindow:
		return "window"
	case ClassificationDoor:
		return "door"
	default:
		return "unknown"
	}
}

// Vector3 is a position or direction in the detector's world frame (metres).
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// PlaneObservation is one planar surface reported by the surface-detection
// subsystem. ID is stable across updates to the same physical surface;
// the extents are refined by the detector as more of the surface is seen.
type PlaneObservation struct {
	ID             string         `json:"id"`
	ExtentWidth    float32        `json:"extent_width"`
	ExtentHeight   float32        `json:"extent_height"`
	Classification Classification `json:"classification"`
	Center         Vector3        `json:"center"`
	Normal         Vector3        `json:"normal"`
}

// BoundingBox is the estimated size of the scanned box. The fields are
// positional, not physical axes: Width <= Height <= Length always holds
// on estimator output (smallest, middle, largest dimension).
type BoundingBox struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Length float32 `json:"length"`
}
