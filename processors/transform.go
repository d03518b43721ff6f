package processors

import (
	"time"

	"github.com/retroblast-engine/metasprite"
)

// Transform animates the position of a group from the opaque pixels of a
// meta layer: `@transform` or `@transform(alphaThreshold)`.
//
// Positions are world units relative to the settings pivot. Positions already
// animated on ancestor groups at the same time are subtracted, so the curve
// holds the local position. Every clip gets a closing key at its end equal to
// its first key.
type Transform struct{}

func (Transform) Action() string { return "transform" }
func (Transform) Order() int { return 0 }

func (Transform) Process(ctx *metasprite.ImportContext, layer *metasprite.Layer) error {
	if err := (Pivot{}).Process(ctx, layer); err != nil {
		return err
	}
	threshold, err := alphaThreshold(layer)
	if err != nil {
		return err
	}

	f := ctx.File
	pivot := ctx.Settings.PivotRelativePos().Mul(metasprite.Vec2{X: float64(f.Width), Y: float64(f.Height)})
	ppu := float64(ctx.Settings.PPU)

	positions := centroids(f, layer, threshold)
	for fr, c := range positions {
		positions[fr] = c.Sub(pivot).Scale(1 / ppu)
	}

	path := layer.Path()
	for _, tag := range f.FrameTags {
		clip, ok := ctx.Clips[tag.Name]
		if !ok || clip.Tag != tag {
			continue
		}

		var (
			curveX, curveY metasprite.Curve
			first          metasprite.Vec2
			keyed          bool
			t              time.Duration
		)
		for fr := tag.From; fr <= tag.To; fr++ {
			if pos, ok := positions[fr]; ok {
				pos = subtractAncestors(clip, layer.Group(), t, pos)
				if !keyed {
					first, keyed = pos, true
				}
				curveX.AddKey(t, pos.X)
				curveY.AddKey(t, pos.Y)
			}
			t += f.Frames[fr].DurationTime()
		}
		if !keyed {
			continue
		}
		curveX.AddKey(t, first.X)
		curveY.AddKey(t, first.Y)

		clip.SetCurve(path, metasprite.PropertyPositionX, &curveX)
		clip.SetCurve(path, metasprite.PropertyPositionY, &curveY)
	}
	return nil
}

// subtractAncestors removes the positions keyed at t on every ancestor of g.
func subtractAncestors(clip *metasprite.Clip, g *metasprite.Group, t time.Duration, pos metasprite.Vec2) metasprite.Vec2 {
	for p := g.Parent(); p != nil; p = p.Parent() {
		cx := clip.Curve(p.Path(), metasprite.PropertyPositionX)
		cy := clip.Curve(p.Path(), metasprite.PropertyPositionY)
		if cx == nil || cy == nil {
			continue
		}
		x, okx := cx.KeyAt(t)
		y, oky := cy.KeyAt(t)
		if okx && oky {
			pos = pos.Sub(metasprite.Vec2{X: x, Y: y})
		}
	}
	return pos
}
