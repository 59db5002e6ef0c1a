package features

import (
	"time"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// TimePredicate reports whether a frame taken at the given time should be
// kept.
type TimePredicate func(ts time.Time) bool

// FilterTimesTask filters the temporal extent of a patch down to the
// frames whose timestamp passes a predicate. It builds a new patch:
// temporal rasters keep only the passing frames, temporal geometry
// collections keep only the entries stamped with a passing time, the
// timestamp sequence shrinks to the passing times, and everything else
// selected is carried over unchanged. The input patch is not modified.
type FilterTimesTask struct {
	pred     TimePredicate
	features patch.Selector
}

// NewFilterTimesTask creates a filter task. An empty selector carries
// every slot of the patch into the filtered result.
func NewFilterTimesTask(pred TimePredicate, features patch.Selector) *FilterTimesTask {
	return &FilterTimesTask{pred: pred, features: features}
}

// NewTimeIntervalFilterTask creates a filter task keeping the frames
// taken inside [start, end], bounds included.
func NewTimeIntervalFilterTask(start, end time.Time, features patch.Selector) *FilterTimesTask {
	return NewFilterTimesTask(func(ts time.Time) bool {
		return !ts.Before(start) && !ts.After(end)
	}, features)
}

// Execute returns the filtered patch.
func (t *FilterTimesTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	var keepIdx []int
	var keepTimes []time.Time
	for i, ts := range p.Timestamps() {
		if t.pred(ts) {
			keepIdx = append(keepIdx, i)
			keepTimes = append(keepTimes, ts)
		}
	}

	sel := t.features
	if sel.IsEmpty() {
		sel = patch.SelectAll()
	}

	out := patch.New()
	for _, ref := range sel.ResolvePresent(p) {
		switch {
		case ref.Type == patch.Timestamps:
			if err := out.SetTimestamps(keepTimes); err != nil {
				return nil, err
			}
		case ref.Type == patch.BBox:
			out.SetBBox(p.BBox())
		case ref.Type == patch.Meta:
			for k, v := range p.Meta() {
				out.SetMetaValue(k, v)
			}
		case ref.Type.IsTemporal():
			payload, err := p.Get(ref.Type, ref.Name)
			if err != nil {
				return nil, err
			}
			filtered, err := filterPayload(payload, keepIdx, keepTimes)
			if err != nil {
				return nil, err
			}
			if err := out.Set(ref.Type, ref.TargetName(), filtered); err != nil {
				return nil, err
			}
		default:
			payload, err := p.Get(ref.Type, ref.Name)
			if err != nil {
				return nil, err
			}
			if err := out.Set(ref.Type, ref.TargetName(), payload); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// filterPayload keeps the selected frames of a temporal payload.
func filterPayload(payload patch.Payload, keepIdx []int, keepTimes []time.Time) (patch.Payload, error) {
	switch v := payload.(type) {
	case *patch.Array:
		return filterFrames(v, keepIdx)
	case *patch.VectorCollection:
		return v.FilterByTime(keepTimes), nil
	default:
		return payload.DeepCopy(), nil
	}
}

// filterFrames copies the selected leading-axis frames, in the given
// order, into a new array.
func filterFrames(arr *patch.Array, keepIdx []int) (*patch.Array, error) {
	shape := arr.Shape()
	frame := 1
	for _, n := range shape[1:] {
		frame *= n
	}
	outShape := append([]int(nil), shape...)
	outShape[0] = len(keepIdx)

	data := make([]float64, len(keepIdx)*frame)
	for i, idx := range keepIdx {
		copy(data[i*frame:(i+1)*frame], arr.Data()[idx*frame:(idx+1)*frame])
	}
	return patch.NewArray(outShape, data)
}
