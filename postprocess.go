package metasprite

// postProcess runs once per parse: premultiply, then resolve links.
func postProcess(f *File) error {
	premultiply(f)
	return resolveLinks(f)
}

// premultiply scales the alpha of every owned cel buffer by the cel's and the
// layer's opacity. Linked cels are skipped; they share their source's buffer.
func premultiply(f *File) {
	for _, frame := range f.Frames {
		for _, cel := range frame.Cels {
			if cel.Type == LinkedCelData {
				continue
			}
			layer := f.FindLayer(cel.LayerIndex)
			k := float32(cel.Opacity * layer.Opacity)
			if k == 1 {
				continue
			}
			for i := range cel.pixels {
				cel.pixels[i].A *= k
			}
		}
	}
}

// resolveLinks replaces linked cels with the data of the cel they point at.
// Frames are visited in order and links must point backwards, so a link to a
// cel that was itself linked finds it already resolved. Links to the same or
// a later frame are rejected.
func resolveLinks(f *File) error {
	for _, frame := range f.Frames {
		for layerIndex, cel := range frame.Cels {
			src, linked := cel.LinkedFrame()
			if !linked {
				continue
			}
			if src < 0 || src >= frame.ID {
				return formatErrorf(cel.offset, "cel of layer %d in frame %d links to frame %d, which does not precede it",
					layerIndex, frame.ID, src)
			}
			target, ok := f.Frames[src].Cels[layerIndex]
			if !ok {
				return formatErrorf(cel.offset, "cel of layer %d in frame %d links to frame %d, which has no cel for that layer",
					layerIndex, frame.ID, src)
			}
			if target.Type == LinkedCelData {
				return formatErrorf(cel.offset, "cel of layer %d in frame %d links to an unresolved cel in frame %d",
					layerIndex, frame.ID, src)
			}

			cel.X, cel.Y = target.X, target.Y
			cel.Width, cel.Height = target.Width, target.Height
			cel.pixels = target.pixels
			cel.Opacity = target.Opacity
			cel.UserData = target.UserData
			cel.Type = RawImageData
			cel.link = -1
		}
	}
	return nil
}
