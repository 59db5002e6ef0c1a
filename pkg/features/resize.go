package features

import (
	"fmt"
	"math"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// ResizeMode selects how a SpatialResizeTask's width and height
// parameters are interpreted.
type ResizeMode string

const (
	// ResizeNewSize treats the parameters as the target extents in
	// cells.
	ResizeNewSize ResizeMode = "new_size"
	// ResizeScaleFactor multiplies each spatial extent by its parameter.
	ResizeScaleFactor ResizeMode = "scale_factor"
	// ResizeResolution treats the parameters as a target cell size in
	// footprint units, deriving the extents from the patch bounding box.
	ResizeResolution ResizeMode = "resolution"
)

// ResizeMethod selects the interpolation used when resampling.
type ResizeMethod string

const (
	// ResizeNearest picks the nearest source cell.
	ResizeNearest ResizeMethod = "nearest"
	// ResizeLinear interpolates bilinearly between the four surrounding
	// source cells.
	ResizeLinear ResizeMethod = "linear"
)

// SpatialResizeTask resamples the (y, x) axes of the selected spatial
// raster features. Non-spatial features in the selection are left
// untouched, so a resize-everything task only touches the rasters that
// actually carry spatial axes. A reference with an output name binds the
// resized payload under the new name and keeps the source.
type SpatialResizeTask struct {
	features    patch.Selector
	mode        ResizeMode
	method      ResizeMethod
	widthParam  float64
	heightParam float64
}

// NewSpatialResizeTask creates a resize task. An empty selector selects
// every feature of the patch. An unknown mode or method, or a
// non-positive parameter, fails with ErrInvalidArgument.
func NewSpatialResizeTask(features patch.Selector, mode ResizeMode, method ResizeMethod, widthParam, heightParam float64) (*SpatialResizeTask, error) {
	switch mode {
	case ResizeNewSize, ResizeScaleFactor, ResizeResolution:
	default:
		return nil, fmt.Errorf("%w: unknown resize mode %q", patch.ErrInvalidArgument, mode)
	}
	switch method {
	case ResizeNearest, ResizeLinear:
	default:
		return nil, fmt.Errorf("%w: unknown resize method %q", patch.ErrInvalidArgument, method)
	}
	if widthParam <= 0 || heightParam <= 0 {
		return nil, fmt.Errorf("%w: resize parameters must be positive, got width %g height %g",
			patch.ErrInvalidArgument, widthParam, heightParam)
	}
	return &SpatialResizeTask{
		features:    features,
		mode:        mode,
		method:      method,
		widthParam:  widthParam,
		heightParam: heightParam,
	}, nil
}

// Execute resizes in place and returns the same patch. Resolution mode
// requires the patch to carry a footprint and fails with
// ErrInvalidArgument without one.
func (t *SpatialResizeTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	var newW, newH int
	switch t.mode {
	case ResizeNewSize:
		newW, newH = int(t.widthParam), int(t.heightParam)
	case ResizeResolution:
		bbox := p.BBox()
		if bbox == nil {
			return nil, fmt.Errorf("%w: resolution resizing needs a patch footprint", patch.ErrInvalidArgument)
		}
		newW = int(math.Round(bbox.Width() / t.widthParam))
		newH = int(math.Round(bbox.Height() / t.heightParam))
	}

	sel := t.features
	if sel.IsEmpty() {
		sel = patch.SelectAll()
	}
	refs, err := sel.Resolve(p)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if !ref.Type.IsSpatial() {
			continue
		}
		arr, err := arrayFeature(p, ref)
		if err != nil {
			return nil, err
		}

		w, h := newW, newH
		if t.mode == ResizeScaleFactor {
			shape := arr.Shape()
			h = int(math.Round(float64(shape[len(shape)-3]) * t.heightParam))
			w = int(math.Round(float64(shape[len(shape)-2]) * t.widthParam))
		}
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("%w: resizing %s to %dx%d cells", patch.ErrInvalidArgument, ref, w, h)
		}

		out, err := resizeSpatial(arr, h, w, t.method)
		if err != nil {
			return nil, err
		}
		if err := p.Set(ref.Type, ref.TargetName(), out); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// resizeSpatial resamples the two spatial axes of a raster, which sit
// directly before the channel axis, preserving every other axis.
func resizeSpatial(arr *patch.Array, newH, newW int, method ResizeMethod) (*patch.Array, error) {
	shape := arr.Shape()
	rank := len(shape)
	if rank < 3 {
		return nil, fmt.Errorf("%w: rank-%d payload has no spatial axes", patch.ErrInvalidArgument, rank)
	}
	srcH, srcW, inner := shape[rank-3], shape[rank-2], shape[rank-1]
	outer := 1
	for _, n := range shape[:rank-3] {
		outer *= n
	}
	if srcH == 0 || srcW == 0 {
		return nil, fmt.Errorf("%w: cannot resize an empty %dx%d raster", patch.ErrInvalidArgument, srcH, srcW)
	}

	outShape := append([]int(nil), shape...)
	outShape[rank-3], outShape[rank-2] = newH, newW
	out := patch.Zeros(outShape)

	src, dst := arr.Data(), out.Data()
	for o := 0; o < outer; o++ {
		plane := src[o*srcH*srcW*inner:]
		for dy := 0; dy < newH; dy++ {
			for dx := 0; dx < newW; dx++ {
				cell := dst[((o*newH+dy)*newW+dx)*inner:]
				for c := 0; c < inner; c++ {
					cell[c] = sample(plane, srcH, srcW, inner, dy, dx, newH, newW, c, method)
				}
			}
		}
	}
	return out, nil
}

// sample resolves one destination cell against the source plane. Cell
// centers map linearly between the two grids.
func sample(plane []float64, srcH, srcW, inner, dy, dx, newH, newW, c int, method ResizeMethod) float64 {
	fy := (float64(dy)+0.5)*float64(srcH)/float64(newH) - 0.5
	fx := (float64(dx)+0.5)*float64(srcW)/float64(newW) - 0.5

	at := func(y, x int) float64 {
		return plane[(y*srcW+x)*inner+c]
	}

	if method == ResizeNearest {
		y := clampIndex(int(math.Round(fy)), srcH)
		x := clampIndex(int(math.Round(fx)), srcW)
		return at(y, x)
	}

	y0 := clampIndex(int(math.Floor(fy)), srcH)
	x0 := clampIndex(int(math.Floor(fx)), srcW)
	y1 := clampIndex(y0+1, srcH)
	x1 := clampIndex(x0+1, srcW)
	wy := math.Min(math.Max(fy-float64(y0), 0), 1)
	wx := math.Min(math.Max(fx-float64(x0), 0), 1)

	top := at(y0, x0)*(1-wx) + at(y0, x1)*wx
	bottom := at(y1, x0)*(1-wx) + at(y1, x1)*wx
	return top*(1-wy) + bottom*wy
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
