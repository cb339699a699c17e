package scenes

import (
	"errors"
	"path/filepath"
)

// Dataset stands in for a loaded volume. Only its display parameters are kept.
type Dataset struct {
	path     string
	opacity  float32
	lod      int
	clipping []float64
}

func OpenDataset(path string) (*Dataset, error) {
	if path == "" {
		return nil, errors.New("empty dataset path")
	}
	return &Dataset{
		path:     filepath.Clean(path),
		opacity:  1,
		clipping: []float64{0, 1},
	}, nil
}

func (d *Dataset) Path() string {
	return d.path
}

func (d *Dataset) SetOpacity(v float32) {
	d.opacity = min(max(v, 0), 1)
}

func (d *Dataset) Opacity() float32 {
	return d.opacity
}

// SetLOD pins the level of detail. Negative means automatic.
func (d *Dataset) SetLOD(lod int) {
	d.lod = lod
}

func (d *Dataset) LOD() int {
	return d.lod
}

func (d *Dataset) SetClipping(lo, hi float64) error {
	if lo > hi {
		return errors.New("clipping range is reversed")
	}
	d.clipping = []float64{lo, hi}
	return nil
}

func (d *Dataset) Clipping() []float64 {
	return d.clipping
}
