// Package asebuild writes Aseprite documents byte by byte. It exists so tests
// can describe fixtures in code instead of checking in binary files.
package asebuild

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
)

// Chunk types written by the builder.
const (
	ChunkLayer        uint16 = 0x2004
	ChunkCel          uint16 = 0x2005
	ChunkCelExtra     uint16 = 0x2006
	ChunkColorProfile uint16 = 0x2007
	ChunkFrameTags    uint16 = 0x2018
	ChunkPalette      uint16 = 0x2019
	ChunkUserData     uint16 = 0x2020
)

// Layer types.
const (
	LayerImage   uint16 = 0
	LayerGroup   uint16 = 1
	LayerTilemap uint16 = 2
)

// Cel types.
const (
	CelRaw        uint16 = 0
	CelLinked     uint16 = 1
	CelCompressed uint16 = 2
	CelTilemap    uint16 = 3
)

// Builder accumulates frames and serializes them behind a file header.
type Builder struct {
	Width, Height int
	ColorDepth    uint16
	// OpacityValid sets header flag 1, making layer opacity meaningful.
	OpacityValid bool
	// Trailing is appended after the last frame.
	Trailing []byte

	frames []*Frame
}

// New returns a builder for an RGBA document of the given canvas size.
func New(width, height int) *Builder {
	return &Builder{Width: width, Height: height, ColorDepth: 32, OpacityValid: true}
}

// Frame appends a frame lasting durationMs milliseconds.
func (b *Builder) Frame(durationMs int) *Frame {
	f := &Frame{Duration: durationMs}
	b.frames = append(b.frames, f)
	return f
}

// Bytes serializes the document.
func (b *Builder) Bytes() []byte {
	var body bytes.Buffer
	for _, f := range b.frames {
		body.Write(f.Bytes())
	}
	body.Write(b.Trailing)

	var flags uint32
	if b.OpacityValid {
		flags = 1
	}

	var out bytes.Buffer
	le(&out, uint32(128+body.Len())) // file size
	le(&out, uint16(0xA5E0))
	le(&out, uint16(len(b.frames)))
	le(&out, uint16(b.Width))
	le(&out, uint16(b.Height))
	le(&out, b.ColorDepth)
	le(&out, flags)
	le(&out, uint16(100)) // deprecated speed
	le(&out, uint32(0))
	le(&out, uint32(0))
	out.WriteByte(0)            // transparent index
	out.Write(make([]byte, 3))  // ignored
	le(&out, uint16(0))         // number of colors
	out.Write([]byte{1, 1})     // pixel ratio
	le(&out, int16(0))          // grid x
	le(&out, int16(0))          // grid y
	le(&out, uint16(16))        // grid width
	le(&out, uint16(16))        // grid height
	out.Write(make([]byte, 84)) // future use
	out.Write(body.Bytes())
	return out.Bytes()
}

// Frame is one frame under construction.
type Frame struct {
	Duration int
	// NewChunkCount writes the chunk count in the DWORD field and 0xFFFF in
	// the old WORD field.
	NewChunkCount bool
	// SizeDelta is added to the declared frame size, to produce mismatches.
	SizeDelta int
	// BadMagic replaces the frame magic number when non-zero.
	BadMagic uint16

	chunks [][]byte
}

// Chunk appends a raw chunk.
func (f *Frame) Chunk(kind uint16, payload []byte) *Frame {
	var c bytes.Buffer
	le(&c, uint32(6+len(payload)))
	le(&c, kind)
	c.Write(payload)
	f.chunks = append(f.chunks, c.Bytes())
	return f
}

// Bytes serializes the frame.
func (f *Frame) Bytes() []byte {
	var body bytes.Buffer
	for _, c := range f.chunks {
		body.Write(c)
	}

	magic := uint16(0xF1FA)
	if f.BadMagic != 0 {
		magic = f.BadMagic
	}
	oldCount, newCount := uint16(len(f.chunks)), uint32(0)
	if f.NewChunkCount {
		oldCount, newCount = 0xFFFF, uint32(len(f.chunks))
	}

	var out bytes.Buffer
	le(&out, uint32(16+body.Len()+f.SizeDelta))
	le(&out, magic)
	le(&out, oldCount)
	le(&out, uint16(f.Duration))
	out.Write([]byte{0, 0})
	le(&out, newCount)
	out.Write(body.Bytes())
	return out.Bytes()
}

// Layer describes a 0x2004 chunk.
type Layer struct {
	Name    string
	Type    uint16
	Level   uint16
	Hidden  bool
	Blend   uint16
	Opacity uint8
}

// Layer appends a layer chunk.
func (f *Frame) Layer(l Layer) *Frame {
	var flags uint16 = 1
	if l.Hidden {
		flags = 0
	}
	var p bytes.Buffer
	le(&p, flags)
	le(&p, l.Type)
	le(&p, l.Level)
	le(&p, uint16(0)) // default width
	le(&p, uint16(0)) // default height
	le(&p, l.Blend)
	p.WriteByte(l.Opacity)
	p.Write(make([]byte, 3))
	str(&p, l.Name)
	return f.Chunk(ChunkLayer, p.Bytes())
}

// Group appends a visible group layer at level.
func (f *Frame) Group(name string, level int) *Frame {
	return f.Layer(Layer{Name: name, Type: LayerGroup, Level: uint16(level), Opacity: 255})
}

// Image appends a visible, opaque image layer at level.
func (f *Frame) Image(name string, level int) *Frame {
	return f.Layer(Layer{Name: name, Type: LayerImage, Level: uint16(level), Opacity: 255})
}

// Cel describes a 0x2005 chunk.
type Cel struct {
	Layer   int
	X, Y    int
	Opacity uint8
	Type    uint16

	// Raw and compressed cels.
	Width, Height int
	Pixels        []byte // RGBA, row-major

	// Linked cels.
	Frame int

	// Extra is appended to the payload as is.
	Extra []byte
}

// Cel appends a cel chunk.
func (f *Frame) Cel(c Cel) *Frame {
	var p bytes.Buffer
	le(&p, uint16(c.Layer))
	le(&p, int16(c.X))
	le(&p, int16(c.Y))
	p.WriteByte(c.Opacity)
	le(&p, c.Type)
	le(&p, int16(0)) // z-index
	p.Write(make([]byte, 5))

	switch c.Type {
	case CelRaw:
		le(&p, uint16(c.Width))
		le(&p, uint16(c.Height))
		p.Write(c.Pixels)
	case CelCompressed:
		le(&p, uint16(c.Width))
		le(&p, uint16(c.Height))
		z, err := compress(c.Pixels)
		if err != nil {
			panic(err) // writing to a bytes.Buffer does not fail
		}
		p.Write(z)
	case CelLinked:
		le(&p, uint16(c.Frame))
	}
	p.Write(c.Extra)
	return f.Chunk(ChunkCel, p.Bytes())
}

// RawCel appends an opaque, uncompressed cel.
func (f *Frame) RawCel(layer, x, y, w, h int, rgba []byte) *Frame {
	return f.Cel(Cel{Layer: layer, X: x, Y: y, Opacity: 255, Type: CelRaw, Width: w, Height: h, Pixels: rgba})
}

// CompressedCel appends an opaque, zlib-compressed cel.
func (f *Frame) CompressedCel(layer, x, y, w, h int, rgba []byte) *Frame {
	return f.Cel(Cel{Layer: layer, X: x, Y: y, Opacity: 255, Type: CelCompressed, Width: w, Height: h, Pixels: rgba})
}

// LinkedCel appends a cel reusing the cel of layer in frame.
func (f *Frame) LinkedCel(layer, frame int) *Frame {
	return f.Cel(Cel{Layer: layer, Opacity: 255, Type: CelLinked, Frame: frame})
}

// Tag is one entry of a 0x2018 chunk.
type Tag struct {
	From, To  int
	Direction uint8
	Repeat    uint16
	Name      string
}

// Tags appends a frame tags chunk.
func (f *Frame) Tags(tags ...Tag) *Frame {
	var p bytes.Buffer
	le(&p, uint16(len(tags)))
	p.Write(make([]byte, 8))
	for _, t := range tags {
		le(&p, uint16(t.From))
		le(&p, uint16(t.To))
		p.WriteByte(t.Direction)
		le(&p, t.Repeat)
		p.Write(make([]byte, 6))
		p.Write([]byte{0, 0, 0}) // deprecated color
		p.WriteByte(0)
		str(&p, t.Name)
	}
	return f.Chunk(ChunkFrameTags, p.Bytes())
}

// UserData appends a user data chunk carrying text.
func (f *Frame) UserData(text string) *Frame {
	var p bytes.Buffer
	le(&p, uint32(1))
	str(&p, text)
	return f.Chunk(ChunkUserData, p.Bytes())
}

// UserDataColor appends a user data chunk carrying text and a color.
func (f *Frame) UserDataColor(text string, rgba [4]byte) *Frame {
	var p bytes.Buffer
	le(&p, uint32(3))
	str(&p, text)
	p.Write(rgba[:])
	return f.Chunk(ChunkUserData, p.Bytes())
}

// ColorProfile appends a color profile chunk without an ICC payload.
func (f *Frame) ColorProfile(kind uint16) *Frame {
	var p bytes.Buffer
	le(&p, kind)
	le(&p, uint16(0))        // flags
	le(&p, uint32(0))        // fixed gamma
	p.Write(make([]byte, 8)) // reserved
	return f.Chunk(ChunkColorProfile, p.Bytes())
}

// Fill returns w*h RGBA pixels of one color.
func Fill(w, h int, r, g, b, a byte) []byte {
	px := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		px = append(px, r, g, b, a)
	}
	return px
}

func le(buf *bytes.Buffer, v any) {
	// binary.Write into a bytes.Buffer only fails for unsupported types.
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
}

func str(buf *bytes.Buffer, s string) {
	le(buf, uint16(len(s)))
	buf.WriteString(s)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := zlib.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
