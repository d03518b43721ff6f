package metasprite

import (
	"fmt"
	"strings"
)

// parser owns the document under construction for the duration of one Parse.
type parser struct {
	file *File
	opts *parseOptions
	tree *hierarchy
	hdr  Header
}

// userDataAcceptor is anything a following User-Data chunk can annotate.
type userDataAcceptor interface {
	setUserData(string)
}

// userDataTarget is the pending target of User-Data chunks. After a Frame-Tags
// chunk it holds one slot per tag; nil slots belong to discarded tags.
type userDataTarget struct {
	queue []userDataAcceptor
}

func (t *userDataTarget) set(targets ...userDataAcceptor) {
	t.queue = append(t.queue[:0], targets...)
}

func (t *userDataTarget) clear() {
	t.queue = t.queue[:0]
}

func (t *userDataTarget) pop() userDataAcceptor {
	if len(t.queue) == 0 {
		return nil
	}
	next := t.queue[0]
	t.queue = t.queue[1:]
	return next
}

// Parse decodes an Aseprite document held in memory. The result is fully
// post-processed: no cel is left linked and cel alpha is premultiplied by cel
// and layer opacity.
func Parse(data []byte, opts ...Option) (*File, error) {
	o := newOptions(opts)
	p := &parser{file: newFile(o.rootName), opts: o}
	p.tree = newHierarchy(p)

	if err := p.parse(data); err != nil {
		return nil, err
	}
	if err := postProcess(p.file); err != nil {
		return nil, err
	}
	return p.file, nil
}

func (p *parser) warn(stage string, off int64, format string, args ...any) error {
	w := Warning{Stage: stage, Message: fmt.Sprintf(format, args...), Offset: off}
	if p.opts.strict {
		return &FormatError{Offset: off, Reason: "strict parsing: " + w.String()}
	}
	p.file.Warnings = append(p.file.Warnings, w)
	p.opts.logger.Warn().Str("stage", stage).Int64("offset", off).Msg(w.Message)
	return nil
}

func (p *parser) parse(data []byte) error {
	d := newDecoder(data, 0)

	if err := d.read(&p.hdr, "file header"); err != nil {
		return err
	}
	if err := expectMagic(uint32(p.hdr.MagicNumberHeader), MagicNumber, "file header", 4); err != nil {
		return err
	}
	if p.hdr.ColorDepth != ColorDepthRGBA {
		return formatErrorf(12, "unsupported color depth %d bpp (%s), only RGBA is supported",
			p.hdr.ColorDepth, p.hdr.ColorDepthDescription())
	}
	p.file.Width = int(p.hdr.Width)
	p.file.Height = int(p.hdr.Height)

	for i := 0; i < int(p.hdr.FrameCount); i++ {
		if err := p.parseFrame(d, i); err != nil {
			return err
		}
	}

	if d.remaining() > 0 {
		return p.warn("frame", d.offset(), "%d bytes left after the last frame", d.remaining())
	}
	return nil
}

func (p *parser) parseFrame(d *decoder, id int) error {
	start := d.offset()
	var fh FrameHeader
	if err := d.read(&fh, fmt.Sprintf("frame %d header", id)); err != nil {
		return err
	}
	if err := expectMagic(uint32(fh.MagicNumber), MagicNumberFrame, "frame", start+4); err != nil {
		return err
	}

	frame := &Frame{ID: id, Duration: int(fh.FrameDuration), Cels: make(map[int]*Cel)}
	var target userDataTarget

	for j := uint32(0); j < fh.NumberOfChunks(); j++ {
		chunkStart := d.offset()
		size, err := d.dword("chunk size")
		if err != nil {
			return err
		}
		kind, err := d.word("chunk type")
		if err != nil {
			return err
		}
		if size < chunkHeaderSize {
			return formatErrorf(chunkStart, "invalid chunk size %d", size)
		}
		payload, err := d.bytes(int(size)-chunkHeaderSize, fmt.Sprintf("chunk 0x%04X", kind))
		if err != nil {
			return err
		}
		if err := p.dispatch(frame, kind, newDecoder(payload, chunkStart+chunkHeaderSize), &target); err != nil {
			return err
		}
	}

	if got := d.offset() - start; got != int64(fh.BytesInFrame) {
		if err := p.warn("frame", start, "frame %d declares %d bytes, read %d", id, fh.BytesInFrame, got); err != nil {
			return err
		}
	}

	p.file.Frames = append(p.file.Frames, frame)
	return nil
}

func (p *parser) dispatch(frame *Frame, kind WORD, d *decoder, target *userDataTarget) error {
	switch kind {
	case ChunkLayer:
		layer, err := p.parseLayerChunk(d)
		if err != nil {
			return err
		}
		if layer != nil {
			target.set(layer)
		} else {
			target.clear()
		}
	case ChunkCel:
		cel, err := p.parseCelChunk(d, frame)
		if err != nil {
			return err
		}
		if cel != nil {
			target.set(cel)
		} else {
			target.clear()
		}
	case ChunkFrameTags:
		tags, err := p.parseFrameTagsChunk(d)
		if err != nil {
			return err
		}
		target.set(tags...)
	case ChunkUserData:
		return p.parseUserDataChunk(d, target)
	case ChunkColorProfile:
		target.clear()
		profile, err := d.word("color profile type")
		if err != nil {
			return err
		}
		p.file.ColorProfile = ColorProfile(profile)
	default:
		// Palette, cel extra and unknown chunks are skipped by their
		// declared length, which the caller has already consumed.
		target.clear()
	}
	return nil
}

func (p *parser) parseLayerChunk(d *decoder) (*Layer, error) {
	off := d.offset()
	var hdr layerChunk
	if err := d.read(&hdr, "layer chunk"); err != nil {
		return nil, err
	}
	name, err := d.str("layer name")
	if err != nil {
		return nil, err
	}
	opacity := 1.0
	if p.hdr.IsLayerOpacityValid() {
		opacity = float64(hdr.Opacity) / 255
	}
	return p.tree.addLayer(hdr, opacity, name, off)
}

// parseCelChunk decodes a cel and attaches it to frame when its layer is
// known. The decoded cel is returned either way, since it is the target of a
// following User-Data chunk.
func (p *parser) parseCelChunk(d *decoder, frame *Frame) (*Cel, error) {
	off := d.offset()
	var hdr celChunk
	if err := d.read(&hdr, "cel chunk"); err != nil {
		return nil, err
	}

	cel := &Cel{
		LayerIndex: int(hdr.LayerIndex),
		X:          int(hdr.XPosition),
		Y:          int(hdr.YPosition),
		Opacity:    float64(hdr.OpacityLevel) / 255,
		Type:       hdr.CelType,
		link:       -1,
		offset:     off,
	}

	switch hdr.CelType {
	case RawImageData, CompressedImageData:
		w, err := d.word("cel width")
		if err != nil {
			return nil, err
		}
		h, err := d.word("cel height")
		if err != nil {
			return nil, err
		}
		cel.Width, cel.Height = int(w), int(h)

		var raw []byte
		if hdr.CelType == RawImageData {
			raw, err = d.bytes(d.remaining(), "raw cel pixels")
		} else {
			raw, err = d.compressed(d.remaining(), cel.Width*cel.Height*4, "compressed cel pixels")
		}
		if err != nil {
			return nil, err
		}
		if cel.pixels, err = toColorBufferRGBA(raw, off); err != nil {
			return nil, err
		}
		if len(cel.pixels) != cel.Width*cel.Height {
			return nil, formatErrorf(off, "color buffer size incorrect: %dx%d cel has %d pixels",
				cel.Width, cel.Height, len(cel.pixels))
		}
	case LinkedCelData:
		link, err := d.word("linked frame position")
		if err != nil {
			return nil, err
		}
		cel.link = int(link)
	case CompressedTilemapData:
		return cel, p.warn("cel", off, "tilemap cel on layer %d is not supported, dropped", cel.LayerIndex)
	default:
		return cel, p.warn("cel", off, "unknown cel type %d on layer %d, dropped", hdr.CelType, cel.LayerIndex)
	}

	if p.file.FindLayer(cel.LayerIndex) == nil {
		return cel, nil
	}
	if _, dup := frame.Cels[cel.LayerIndex]; dup {
		return nil, formatErrorf(off, "frame %d has two cels for layer %d", frame.ID, cel.LayerIndex)
	}
	frame.Cels[cel.LayerIndex] = cel
	return cel, nil
}

func toColorBufferRGBA(raw []byte, off int64) ([]Color, error) {
	if len(raw)%4 != 0 {
		return nil, formatErrorf(off, "invalid color data: %d bytes is not a multiple of 4", len(raw))
	}
	colors := make([]Color, len(raw)/4)
	for i := range colors {
		px := raw[i*4 : i*4+4]
		colors[i] = Color{
			R: float32(px[0]) / 255,
			G: float32(px[1]) / 255,
			B: float32(px[2]) / 255,
			A: float32(px[3]) / 255,
		}
	}
	return colors, nil
}

// parseFrameTagsChunk returns one user-data slot per tag in chunk order.
func (p *parser) parseFrameTagsChunk(d *decoder) ([]userDataAcceptor, error) {
	count, err := d.word("tag count")
	if err != nil {
		return nil, err
	}
	if err := d.skip(8, "tag chunk reserved bytes"); err != nil {
		return nil, err
	}

	slots := make([]userDataAcceptor, 0, count)
	for i := 0; i < int(count); i++ {
		off := d.offset()
		var hdr tagChunk
		if err := d.read(&hdr, "tag"); err != nil {
			return nil, err
		}
		name, err := d.str("tag name")
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(name, commentMarker) {
			slots = append(slots, nil)
			continue
		}

		tag := &FrameTag{
			From:       int(hdr.FromFrame),
			To:         int(hdr.ToFrame),
			Name:       name,
			Properties: make(map[string]struct{}),
			Direction:  hdr.AnimationDirection,
			Repeat:     hdr.Repeat,
		}
		if tag.From > tag.To || tag.To >= int(p.hdr.FrameCount) {
			return nil, formatErrorf(off, "tag %q range %d..%d is outside %d frames",
				name, tag.From, tag.To, p.hdr.FrameCount)
		}
		if err := p.parseTagProperties(tag, off); err != nil {
			return nil, err
		}

		p.file.FrameTags = append(p.file.FrameTags, tag)
		slots = append(slots, tag)
	}
	return slots, nil
}

// parseTagProperties splits "walk #loop #fast" into name "walk" and the
// properties loop and fast.
func (p *parser) parseTagProperties(tag *FrameTag, off int64) error {
	original := tag.Name
	idx := strings.Index(original, propertyMarker)
	if idx < 0 {
		return nil
	}
	tag.Name = strings.TrimSpace(original[:idx])

	invalid := false
	for _, token := range strings.Split(original[idx:], " ") {
		if len(token) > 1 && strings.HasPrefix(token, propertyMarker) {
			tag.Properties[token[len(propertyMarker):]] = struct{}{}
		} else {
			invalid = true
		}
	}
	if invalid {
		return p.warn("tag", off, "invalid tag name: %q", original)
	}
	return nil
}

func (p *parser) parseUserDataChunk(d *decoder, target *userDataTarget) error {
	dst := target.pop()

	flags, err := d.dword("user data flags")
	if err != nil {
		return err
	}
	if flags&userDataHasText != 0 {
		text, err := d.str("user data text")
		if err != nil {
			return err
		}
		if dst != nil {
			dst.setUserData(text)
		}
	}
	if flags&userDataHasColor != 0 {
		if err := d.skip(4, "user data color"); err != nil {
			return err
		}
	}
	return nil
}
