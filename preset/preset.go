/*
DESCRIPTION
  preset.go resolves symbolic (channel, mode) sequence requests into the
  concrete firmware pattern index lists the sequence orchestrator feeds
  to the LUT, applying per-entry repeat counts, off-padding, and blank
  interleaving.
*/

// Package preset resolves channel/mode selections against a channel map
// into firmware pattern index vectors ready for the sequence orchestrator.
package preset

import "github.com/tidlp/dmd/dmderr"

// offKey is the channel-map entry used for off-padding and blank
// interleaving.
const offKey = "off"

// defaultKey is the channel-map entry every channel must define.
const defaultKey = "default"

// ChannelMap maps a channel name to its named index vectors (at minimum
// "default" and, if off-padding or blanking is used, "off").
type ChannelMap map[string]map[string][]int

// Validate checks that every channel defines "default" and that every
// index list is non-nested (the map's value type already enforces
// flatness; this also rejects an explicitly empty default).
func (m ChannelMap) Validate() error {
	for channel, modes := range m {
		fi, ok := modes[defaultKey]
		if !ok || len(fi) == 0 {
			return dmderr.New(dmderr.ConfigInvalid, "channel %q missing non-empty %q entry", channel, defaultKey)
		}
	}
	return nil
}

// Entry is one (channel, mode) request in a preset resolution, after
// scalar broadcast has expanded every field to the same length.
type Entry struct {
	Channel   string
	Mode      string
	SubIndex  *int // optional sub-index selector into the resolved vector
	Repeats   int
	OffBefore int
	OffAfter  int
	Blank     bool
}

// Resolve turns a list of entries into the concatenated firmware pattern
// index sequence the orchestrator uploads.
func Resolve(m ChannelMap, entries []Entry) ([]int, error) {
	var out []int
	for i, e := range entries {
		fi, err := resolveOne(m, e)
		if err != nil {
			return nil, dmderr.Wrap(dmderr.ConfigInvalid, err, "resolving preset entry %d (channel=%q mode=%q)", i, e.Channel, e.Mode)
		}
		out = append(out, fi...)
	}
	return out, nil
}

func resolveOne(m ChannelMap, e Entry) ([]int, error) {
	channel, ok := m[e.Channel]
	if !ok {
		return nil, dmderr.New(dmderr.ConfigInvalid, "unknown channel %q", e.Channel)
	}
	fi, ok := channel[e.Mode]
	if !ok {
		return nil, dmderr.New(dmderr.ConfigInvalid, "channel %q has no mode %q", e.Channel, e.Mode)
	}
	if e.SubIndex != nil {
		if *e.SubIndex < 0 || *e.SubIndex >= len(fi) {
			return nil, dmderr.New(dmderr.Validation, "sub-index %d out of range for channel %q mode %q (len %d)", *e.SubIndex, e.Channel, e.Mode, len(fi))
		}
		fi = []int{fi[*e.SubIndex]}
	}

	repeats := e.Repeats
	if repeats < 1 {
		repeats = 1
	}
	repeated := make([]int, 0, len(fi)*repeats)
	for r := 0; r < repeats; r++ {
		repeated = append(repeated, fi...)
	}
	fi = repeated

	if e.OffBefore > 0 || e.OffAfter > 0 {
		off, ok := channel[offKey]
		if !ok || len(off) == 0 {
			return nil, dmderr.New(dmderr.ConfigInvalid, "channel %q needs an %q entry for off-padding", e.Channel, offKey)
		}
		var padded []int
		for i := 0; i < e.OffBefore; i++ {
			padded = append(padded, off...)
		}
		padded = append(padded, fi...)
		for i := 0; i < e.OffAfter; i++ {
			padded = append(padded, off...)
		}
		fi = padded
	}

	if e.Blank {
		off, ok := channel[offKey]
		if !ok || len(off) == 0 {
			return nil, dmderr.New(dmderr.ConfigInvalid, "channel %q needs an %q entry for blank interleaving", e.Channel, offKey)
		}
		interleaved := make([]int, 0, len(fi)*2)
		for _, idx := range fi {
			interleaved = append(interleaved, idx, off[0])
		}
		fi = interleaved
	}

	return fi, nil
}

// Expand broadcasts a scalar to length n, or validates that vec already
// has length n, erroring when neither holds. It backs the per-entry
// scalar-or-vector fields (exposure, dark time, repeat, off-padding,
// blank) the orchestrator and preset resolver both accept.
func Expand[T any](scalarOrVec []T, n int) ([]T, error) {
	switch len(scalarOrVec) {
	case n:
		return scalarOrVec, nil
	case 1:
		out := make([]T, n)
		for i := range out {
			out[i] = scalarOrVec[0]
		}
		return out, nil
	default:
		return nil, dmderr.New(dmderr.Validation, "cannot broadcast length-%d sequence to length %d", len(scalarOrVec), n)
	}
}
