/*
DESCRIPTION
  archive.go implements the on-disk configuration format: a JSON document
  holding pattern metadata, the channel map, and an optional device path,
  plus an optional bit-packed companion file holding the raw N x H x W
  pattern array, read/written with icza/bitio. This replaces the
  original's zarr-or-json duality (zarr has no maintained Go binding in
  this ecosystem) with a single self-describing JSON+binary pair.
*/

// Package config implements the DLPC900 driver's on-disk configuration
// archive: pattern metadata, channel map, optional bit-packed pattern
// array, validation, and file-change hot-reload.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/tidlp/dmd/dmderr"
	"github.com/tidlp/dmd/preset"
)

// PatternMeta is one entry of the per-pattern metadata list.
type PatternMeta map[string]interface{}

// Archive is the full on-disk configuration document.
type Archive struct {
	Timestamp           time.Time              `json:"timestamp"`
	FirmwarePatternData []PatternMeta          `json:"firmware_pattern_data"`
	ChannelMap          preset.ChannelMap      `json:"channel_map"`
	HIDPath             string                 `json:"hid_path,omitempty"`

	// FirmwarePatterns is the raw N x H x W boolean pattern array, only
	// populated when Load finds and reads the companion .bin file.
	FirmwarePatterns [][][]bool `json:"-"`
}

// binSuffix names the optional bit-packed companion file, same base name
// as the JSON archive.
const binSuffix = ".bin"

func binPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + binSuffix
}

// Validate checks the archive's structural invariants: every channel map
// entry defines "default", and (by construction of preset.ChannelMap's
// Go type) every index list is already flat.
func (a *Archive) Validate() error {
	if a.ChannelMap != nil {
		if err := a.ChannelMap.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the archive's JSON document to path, and its bit-packed
// pattern array (if present) to the companion .bin file.
func Save(path string, a *Archive) error {
	if err := a.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return dmderr.Wrap(dmderr.ConfigInvalid, err, "creating archive %q", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	if err := enc.Encode(a); err != nil {
		return dmderr.Wrap(dmderr.ConfigInvalid, err, "encoding archive %q", path)
	}

	if a.FirmwarePatterns == nil {
		return nil
	}
	return savePatterns(binPath(path), a.FirmwarePatterns)
}

// Load reads the archive's JSON document from path, validating it. The
// companion .bin file, if present, is read into FirmwarePatterns; its
// absence is not an error.
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dmderr.Wrap(dmderr.ConfigInvalid, err, "opening archive %q", path)
	}
	defer f.Close()

	var a Archive
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, dmderr.Wrap(dmderr.ConfigInvalid, err, "decoding archive %q", path)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	bp := binPath(path)
	if _, err := os.Stat(bp); err == nil {
		patterns, loadErr := loadPatterns(bp)
		if loadErr != nil {
			return nil, dmderr.Wrap(dmderr.ConfigInvalid, loadErr, "reading pattern companion %q", bp)
		}
		a.FirmwarePatterns = patterns
	}

	return &a, nil
}

// savePatterns bit-packs an N x H x W boolean array and writes it to
// path, prefixed with its three dimensions as 32-bit values written most
// significant bit first (big-endian).
func savePatterns(path string, patterns [][][]bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating pattern file %q", path)
	}
	defer f.Close()

	n := len(patterns)
	h, w := 0, 0
	if n > 0 {
		h = len(patterns[0])
		if h > 0 {
			w = len(patterns[0][0])
		}
	}

	bw := bitio.NewWriter(f)
	for _, dim := range []int{n, h, w} {
		if err := bw.WriteBits(uint64(dim), 32); err != nil {
			return errors.Wrap(err, "writing pattern array dimensions")
		}
	}
	for _, frame := range patterns {
		for _, row := range frame {
			for _, v := range row {
				if err := bw.WriteBool(v); err != nil {
					return errors.Wrap(err, "writing pattern bit")
				}
			}
		}
	}
	return bw.Close()
}

// loadPatterns reads a bit-packed N x H x W boolean array written by
// savePatterns.
func loadPatterns(path string) ([][][]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening pattern file %q", path)
	}
	defer f.Close()

	br := bitio.NewReader(f)
	n, err := readDim(br)
	if err != nil {
		return nil, err
	}
	h, err := readDim(br)
	if err != nil {
		return nil, err
	}
	w, err := readDim(br)
	if err != nil {
		return nil, err
	}

	patterns := make([][][]bool, n)
	for i := range patterns {
		frame := make([][]bool, h)
		for r := range frame {
			row := make([]bool, w)
			for c := range row {
				v, err := br.ReadBool()
				if err != nil {
					return nil, errors.Wrap(err, "reading pattern bit")
				}
				row[c] = v
			}
			frame[r] = row
		}
		patterns[i] = frame
	}
	return patterns, nil
}

func readDim(br *bitio.Reader) (int, error) {
	v, err := br.ReadBits(32)
	if err != nil {
		return 0, errors.Wrap(err, "reading pattern array dimension")
	}
	return int(v), nil
}
