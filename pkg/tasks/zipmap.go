package tasks

import (
	"fmt"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// ZipFunc combines one payload per source feature, in resolved order,
// into a single output payload. Params carries the task's extra keyword
// parameters, forwarded verbatim on every invocation.
type ZipFunc func(payloads []patch.Payload, params map[string]any) (patch.Payload, error)

// MapFunc transforms one source payload into one destination payload.
// Params carries the task's extra keyword parameters, forwarded verbatim
// on every invocation.
type MapFunc func(payload patch.Payload, params map[string]any) (patch.Payload, error)

// ZipFeatureTask applies an externally supplied n-ary function to an
// ordered set of source features and binds the result under one
// destination key.
type ZipFeatureTask struct {
	sources patch.Selector
	dst     patch.FeatureRef
	fn      ZipFunc
	params  map[string]any
}

// NewZipFeatureTask creates a zip task. fn receives one payload per
// resolved source, in order, plus params. A nil fn is permitted only when
// the selector resolves to a single source, in which case the destination
// receives an independent copy of it.
func NewZipFeatureTask(sources patch.Selector, dst patch.FeatureRef, fn ZipFunc, params map[string]any) *ZipFeatureTask {
	return &ZipFeatureTask{sources: sources, dst: dst, fn: fn, params: params}
}

// Execute zips in place and returns the same patch. A nil function with
// more than one resolved source fails with ErrUnsupportedOperation.
func (t *ZipFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	refs, err := t.sources.Resolve(p)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: zip requires at least one source feature", patch.ErrInvalidArgument)
	}

	payloads := make([]patch.Payload, len(refs))
	for i, ref := range refs {
		payload, err := p.Get(ref.Type, ref.Name)
		if err != nil {
			return nil, err
		}
		payloads[i] = payload
	}

	var out patch.Payload
	if t.fn == nil {
		if len(payloads) != 1 {
			return nil, fmt.Errorf("%w: zip of %d sources has no default combiner", patch.ErrUnsupportedOperation, len(payloads))
		}
		out = payloads[0].DeepCopy()
	} else {
		out, err = t.fn(payloads, t.params)
		if err != nil {
			return nil, err
		}
	}

	if err := p.Set(t.dst.Type, t.dst.TargetName(), out); err != nil {
		return nil, err
	}
	return p, nil
}

// MapFeatureTask applies an externally supplied unary function to each
// source feature independently, binding each result under the positionally
// paired destination key.
type MapFeatureTask struct {
	pairs  []mapPair
	fn     MapFunc
	params map[string]any
}

type mapPair struct {
	src patch.FeatureRef
	dst patch.FeatureRef
}

// NewMapFeatureTask creates a map task from structurally identical input
// and output selectors: the same feature types with name lists of equal
// length, paired positionally per type. A structural mismatch or a
// wildcard fails with ErrInvalidArgument at construction. A nil fn is
// permitted only for a single pair, which then receives an independent
// copy of its source.
func NewMapFeatureTask(inputs, outputs patch.Selector, fn MapFunc, params map[string]any) (*MapFeatureTask, error) {
	if inputs.IsAll() || outputs.IsAll() {
		return nil, fmt.Errorf("%w: map does not accept the all-selector", patch.ErrInvalidArgument)
	}
	in, out := inputs.Refs(), outputs.Refs()
	for _, ref := range append(append([]patch.FeatureRef(nil), in...), out...) {
		if ref.Name == patch.AllNames {
			return nil, fmt.Errorf("%w: map does not accept wildcard names", patch.ErrInvalidArgument)
		}
	}

	byType := func(refs []patch.FeatureRef) (order []patch.FeatureType, grouped map[patch.FeatureType][]patch.FeatureRef) {
		grouped = make(map[patch.FeatureType][]patch.FeatureRef)
		for _, ref := range refs {
			if _, ok := grouped[ref.Type]; !ok {
				order = append(order, ref.Type)
			}
			grouped[ref.Type] = append(grouped[ref.Type], ref)
		}
		return order, grouped
	}

	inOrder, inGroups := byType(in)
	_, outGroups := byType(out)
	if len(inGroups) != len(outGroups) {
		return nil, fmt.Errorf("%w: input and output mappings name different feature types", patch.ErrInvalidArgument)
	}

	var pairs []mapPair
	for _, ftype := range inOrder {
		srcs, dsts := inGroups[ftype], outGroups[ftype]
		if len(srcs) != len(dsts) {
			return nil, fmt.Errorf("%w: %s has %d input names but %d output names",
				patch.ErrInvalidArgument, ftype, len(srcs), len(dsts))
		}
		for i := range srcs {
			pairs = append(pairs, mapPair{src: srcs[i], dst: dsts[i]})
		}
	}

	return &MapFeatureTask{pairs: pairs, fn: fn, params: params}, nil
}

// Execute maps in place and returns the same patch. A nil function with
// more than one pair fails with ErrUnsupportedOperation.
func (t *MapFeatureTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	if t.fn == nil && len(t.pairs) != 1 {
		return nil, fmt.Errorf("%w: mapping %d features has no default function", patch.ErrUnsupportedOperation, len(t.pairs))
	}
	for _, pair := range t.pairs {
		payload, err := p.Get(pair.src.Type, pair.src.Name)
		if err != nil {
			return nil, err
		}

		var out patch.Payload
		if t.fn == nil {
			out = payload.DeepCopy()
		} else {
			out, err = t.fn(payload, t.params)
			if err != nil {
				return nil, err
			}
		}

		if err := p.Set(pair.dst.Type, pair.dst.TargetName(), out); err != nil {
			return nil, err
		}
	}
	return p, nil
}
