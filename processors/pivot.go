package processors

import "github.com/retroblast-engine/metasprite"

// Pivot sets the sprite pivot of a group from the opaque pixels of a meta
// layer: `@pivot` or `@pivot(alphaThreshold)`.
//
// A frame without a pivot cel keeps the pivot of the closest earlier frame;
// frames before the first pivot cel use the first one.
type Pivot struct{}

func (Pivot) Action() string { return "pivot" }
func (Pivot) Order() int { return 0 }

func (Pivot) Process(ctx *metasprite.ImportContext, layer *metasprite.Layer) error {
	threshold, err := alphaThreshold(layer)
	if err != nil {
		return err
	}
	f := ctx.File
	found := centroids(f, layer, threshold)
	if len(found) == 0 {
		ctx.Logger.Debug().Str("layer", layer.Name).Msg("pivot layer has no opaque pixels")
		return nil
	}

	first := len(f.Frames)
	for fr := range found {
		if fr < first {
			first = fr
		}
	}

	canvas := metasprite.Vec2{X: float64(f.Width), Y: float64(f.Height)}
	pivots := make([]metasprite.PivotFrame, len(f.Frames))
	current := found[first]
	for i := range f.Frames {
		if c, ok := found[i]; ok {
			current = c
		}
		pivots[i] = metasprite.PivotFrame{
			Frame:    i,
			Pivot:    current,
			Relative: metasprite.Vec2{X: current.X / canvas.X, Y: current.Y / canvas.Y},
		}
	}
	ctx.Pivots[layer.Path()] = pivots
	return nil
}
