// Package processors holds the built-in meta layer processors.
package processors

import (
	"fmt"

	"github.com/retroblast-engine/metasprite"
)

const defaultAlphaThreshold = 0.1

// All returns every built-in processor, ready for metasprite.NewRegistry.
func All() []metasprite.Processor {
	return []metasprite.Processor{
		Pivot{},
		Transform{},
	}
}

// NewRegistry returns a registry of the built-in processors plus extra.
func NewRegistry(extra ...metasprite.Processor) (*metasprite.Registry, error) {
	return metasprite.NewRegistry(append(All(), extra...)...)
}

// alphaThreshold reads the optional first parameter of layer.
func alphaThreshold(layer *metasprite.Layer) (float32, error) {
	if layer.ParamCount() == 0 {
		return defaultAlphaThreshold, nil
	}
	v, err := layer.ParamFloat(0)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= 1 {
		return 0, fmt.Errorf("alpha threshold %v out of range [0,1)", v)
	}
	return float32(v), nil
}

// centroid returns the mean position of the cel pixels whose alpha exceeds
// threshold, in texture space: x to the right, y up from the bottom row.
func centroid(f *metasprite.File, cel *metasprite.Cel, threshold float32) (metasprite.Vec2, bool) {
	var sum metasprite.Vec2
	n := 0
	for y := 0; y < cel.Height; y++ {
		for x := 0; x < cel.Width; x++ {
			if cel.PixelRaw(x, y).A <= threshold {
				continue
			}
			texX := cel.X + x
			texY := f.Height - 1 - (cel.Y + y)
			sum = sum.Add(metasprite.Vec2{X: float64(texX), Y: float64(texY)})
			n++
		}
	}
	if n == 0 {
		return metasprite.Vec2{}, false
	}
	return sum.Scale(1 / float64(n)), true
}

// centroids maps each frame holding an opaque cel of layer to its centroid.
func centroids(f *metasprite.File, layer *metasprite.Layer, threshold float32) map[int]metasprite.Vec2 {
	out := make(map[int]metasprite.Vec2)
	for _, frame := range f.Frames {
		cel, ok := frame.Cels[layer.Index]
		if !ok {
			continue
		}
		if c, ok := centroid(f, cel, threshold); ok {
			out[frame.ID] = c
		}
	}
	return out
}
