package tasks

import "github.com/mesh-intelligence/terrapatch/pkg/patch"

// ExtractBandsTask copies an ordered list of channel indices from a
// source feature's last axis into a new feature, preserving all leading
// axes. The extracted payload is an independent copy; mutating it does
// not affect the source.
type ExtractBandsTask struct {
	src   patch.FeatureRef
	dst   patch.FeatureRef
	bands []int
}

// NewExtractBandsTask creates a band extraction task.
func NewExtractBandsTask(src, dst patch.FeatureRef, bands []int) *ExtractBandsTask {
	return &ExtractBandsTask{src: src, dst: dst, bands: append([]int(nil), bands...)}
}

// Execute extracts in place and returns the same patch. An index at or
// beyond the source's channel count fails with ErrIndexOutOfRange.
func (t *ExtractBandsTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	arr, err := arrayPayload(p, t.src)
	if err != nil {
		return nil, err
	}
	out, err := arr.SelectBands(t.bands)
	if err != nil {
		return nil, err
	}
	if err := p.Set(t.dst.Type, t.dst.TargetName(), out); err != nil {
		return nil, err
	}
	return p, nil
}

// BandMapping pairs one explode destination with the channel indices it
// receives. An empty index list is allowed and yields a present,
// zero-width feature.
type BandMapping struct {
	Dst   patch.FeatureRef
	Bands []int
}

// ExplodeBandsTask splits a source feature into one new feature per
// mapping entry, each holding the selected channel slice(s) of the
// source. Every destination ends up present in the result patch, even
// when its channel list is empty.
type ExplodeBandsTask struct {
	src      patch.FeatureRef
	mappings []BandMapping
}

// NewExplodeBandsTask creates a band explosion task. The mappings are
// applied in order.
func NewExplodeBandsTask(src patch.FeatureRef, mappings []BandMapping) *ExplodeBandsTask {
	return &ExplodeBandsTask{src: src, mappings: append([]BandMapping(nil), mappings...)}
}

// Execute explodes in place and returns the same patch.
func (t *ExplodeBandsTask) Execute(p *patch.Patch, extra ...any) (*patch.Patch, error) {
	arr, err := arrayPayload(p, t.src)
	if err != nil {
		return nil, err
	}
	for _, m := range t.mappings {
		out, err := arr.SelectBands(m.Bands)
		if err != nil {
			return nil, err
		}
		if err := p.Set(m.Dst.Type, m.Dst.TargetName(), out); err != nil {
			return nil, err
		}
	}
	return p, nil
}
