package metasprite

import (
	"image"
	"image/color"
	"image/draw"
)

// Bounds is the cel rectangle on the canvas.
func (c *Cel) Bounds() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Image returns the cel as an image positioned on the canvas at (X, Y).
func (c *Cel) Image() *image.NRGBA {
	img := image.NewNRGBA(c.Bounds())
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetNRGBA(c.X+x, c.Y+y, c.PixelRaw(x, y).NRGBA())
		}
	}
	return img
}

// NRGBA converts the color to 8-bit straight alpha.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A)}
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// RenderGroup composes the content layers owned by g for one frame onto a
// canvas-sized image, bottom layer first. Every blend mode is drawn as Normal.
func (f *File) RenderGroup(g *Group, frame int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	if frame < 0 || frame >= len(f.Frames) {
		return canvas
	}
	cels := f.Frames[frame].Cels
	for _, layer := range g.ContentLayers {
		cel, ok := cels[layer.Index]
		if !ok {
			continue
		}
		src := cel.Image()
		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
	}
	return canvas
}

// RenderFrame composes every content layer of the file for one frame.
func (f *File) RenderFrame(frame int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	if frame < 0 || frame >= len(f.Frames) {
		return canvas
	}
	cels := f.Frames[frame].Cels
	for _, layer := range f.SortedContentLayers() {
		if cel, ok := cels[layer.Index]; ok {
			src := cel.Image()
			draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		}
	}
	return canvas
}
