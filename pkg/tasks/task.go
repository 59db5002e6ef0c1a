// Package tasks provides the core library of composable patch
// transformations. Every task exposes the uniform Execute contract so a
// workflow layer can chain tasks without knowing their configuration;
// extra positional arguments carry operation-specific data such as
// AddFeature's payload or MoveFeature's destination patch.
package tasks

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

// Task is the uniform transformation contract: consume a patch (plus
// optional extra positional data), produce a patch. A task may mutate and
// return its input or build a new patch; which one is part of each task's
// documented behavior.
type Task interface {
	Execute(p *patch.Patch, extra ...any) (*patch.Patch, error)
}

// copySlot copies one resolved slot from src into dst. Shallow copies bind
// the identical payload reference in both patches; deep copies bind an
// independently owned value.
func copySlot(dst, src *patch.Patch, ref patch.FeatureRef, deep bool) error {
	switch ref.Type {
	case patch.BBox:
		b := src.BBox()
		if deep {
			b = b.Clone()
		}
		dst.SetBBox(b)
		return nil
	case patch.Timestamps:
		ts := src.Timestamps()
		if deep {
			ts = append([]time.Time(nil), ts...)
		}
		return dst.SetTimestamps(ts)
	case patch.Meta:
		for k, v := range src.Meta() {
			if deep {
				v = cloneMetaValue(v)
			}
			dst.SetMetaValue(k, v)
		}
		return nil
	}

	payload, err := src.Get(ref.Type, ref.Name)
	if err != nil {
		return err
	}
	if deep {
		payload = payload.DeepCopy()
	}
	return dst.Set(ref.Type, ref.TargetName(), payload)
}

// cloneMetaValue copies a metadata value recursively. Payloads clone
// through DeepCopy, maps and slices element by element; anything else is
// treated as a value and shared.
func cloneMetaValue(v any) any {
	switch val := v.(type) {
	case patch.Payload:
		return val.DeepCopy()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, w := range val {
			out[k] = cloneMetaValue(w)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, w := range val {
			out[i] = cloneMetaValue(w)
		}
		return out
	default:
		return val
	}
}

// arrayPayload fetches (t, name) and asserts an array payload.
func arrayPayload(p *patch.Patch, ref patch.FeatureRef) (*patch.Array, error) {
	payload, err := p.Get(ref.Type, ref.Name)
	if err != nil {
		return nil, err
	}
	arr, ok := payload.(*patch.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array feature", patch.ErrInvalidArgument, ref)
	}
	return arr, nil
}
