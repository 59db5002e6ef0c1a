package patch

import (
	"fmt"

	"github.com/paulmach/orb"
)

// BoundingBox is the singleton spatial footprint of a patch: a rectangular
// extent plus the EPSG code of its reference system.
type BoundingBox struct {
	Bound orb.Bound
	CRS   int
}

// NewBoundingBox creates a footprint from corner coordinates and an EPSG
// code. Min/max order is normalized.
func NewBoundingBox(minX, minY, maxX, maxY float64, crs int) *BoundingBox {
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return &BoundingBox{
		Bound: orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}},
		CRS:   crs,
	}
}

// Width returns the horizontal extent.
func (b *BoundingBox) Width() float64 { return b.Bound.Max[0] - b.Bound.Min[0] }

// Height returns the vertical extent.
func (b *BoundingBox) Height() float64 { return b.Bound.Max[1] - b.Bound.Min[1] }

// Clone returns an independent copy of the footprint.
func (b *BoundingBox) Clone() *BoundingBox {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// Equal reports value equality of two footprints. Two nil footprints are
// equal.
func (b *BoundingBox) Equal(other *BoundingBox) bool {
	if b == nil || other == nil {
		return b == nil && other == nil
	}
	return b.Bound.Equal(other.Bound) && b.CRS == other.CRS
}

// String returns "min_x,min_y,max_x,max_y EPSG:code".
func (b *BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g EPSG:%d", b.Bound.Min[0], b.Bound.Min[1], b.Bound.Max[0], b.Bound.Max[1], b.CRS)
}
