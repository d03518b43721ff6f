package metasprite

import (
	"sort"
	"time"

	"github.com/retroblast-engine/metasprite/internal/action"
)

// BlendMode is the compositing mode of a layer.
type BlendMode WORD

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAddition
	BlendSubtract
	BlendDivide
)

var blendModeNames = [...]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten", "ColorDodge",
	"ColorBurn", "HardLight", "SoftLight", "Difference", "Exclusion", "Hue",
	"Saturation", "Color", "Luminosity", "Addition", "Subtract", "Divide",
}

func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return "Unknown"
}

// File is a parsed Aseprite document. It is read-only once Parse returns.
type File struct {
	Width, Height int
	Frames        []*Frame
	FrameTags     []*FrameTag

	// ContentLayers and MetaLayers are keyed by layer index.
	ContentLayers map[int]*Layer
	MetaLayers    map[int]*Layer

	ColorProfile ColorProfile
	Warnings     []Warning

	groups       []*Group        // arena; groups[0] is the root
	indexToGroup map[int]GroupID // stream index (or alias) to group
	nameToGroup  map[string]GroupID
	registered   []GroupID // name registration order
	metaOrder    []int     // meta layer indices in declaration order
}

func newFile(rootName string) *File {
	f := &File{
		ContentLayers: make(map[int]*Layer),
		MetaLayers:    make(map[int]*Layer),
		indexToGroup:  make(map[int]GroupID),
		nameToGroup:   make(map[string]GroupID),
	}
	root := f.newGroup(rootName)
	root.Index = rootIndex
	root.parent = NoGroup
	f.indexToGroup[root.Index] = root.id
	f.nameToGroup[root.Name] = root.id
	f.registered = append(f.registered, root.id)
	return f
}

// FindLayer returns the content or meta layer with the given index.
func (f *File) FindLayer(index int) *Layer {
	if l, ok := f.ContentLayers[index]; ok {
		return l
	}
	if l, ok := f.MetaLayers[index]; ok {
		return l
	}
	return nil
}

// MetaLayersInOrder returns meta layers in declaration order.
func (f *File) MetaLayersInOrder() []*Layer {
	out := make([]*Layer, 0, len(f.metaOrder))
	for _, idx := range f.metaOrder {
		out = append(out, f.MetaLayers[idx])
	}
	return out
}

// SortedContentLayers returns content layers by ascending index, bottom first.
func (f *File) SortedContentLayers() []*Layer {
	out := make([]*Layer, 0, len(f.ContentLayers))
	for _, l := range f.ContentLayers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Frame is one animation frame.
type Frame struct {
	ID       int // position in File.Frames
	Duration int // milliseconds
	Cels     map[int]*Cel
}

func (fr *Frame) DurationTime() time.Duration {
	return time.Duration(fr.Duration) * time.Millisecond
}

// Color is a straight-alpha RGBA sample with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// Cel is the pixels of one layer in one frame.
type Cel struct {
	LayerIndex int
	Opacity    float64
	// X and Y are the top-left offset of the cel on the canvas.
	X, Y, Width, Height int
	Type                CelDataType
	UserData            string

	pixels []Color
	link   int   // source frame while Type == LinkedCelData
	offset int64 // start of the cel chunk payload
}

// PixelRaw returns the color at (x, y) in cel space.
func (c *Cel) PixelRaw(x, y int) Color {
	return c.pixels[y*c.Width+x]
}

// Pixel returns the color at (x, y) in canvas space, transparent outside the cel.
func (c *Cel) Pixel(x, y int) Color {
	relx, rely := x-c.X, y-c.Y
	if 0 <= relx && relx < c.Width && 0 <= rely && rely < c.Height {
		return c.PixelRaw(relx, rely)
	}
	return Color{}
}

// Pixels returns the cel's color buffer, row-major. Linked cels share the
// buffer of their source; callers must not modify it.
func (c *Cel) Pixels() []Color {
	return c.pixels
}

// LinkedFrame reports the source frame of a cel that is still linked.
func (c *Cel) LinkedFrame() (int, bool) {
	return c.link, c.Type == LinkedCelData
}

func (c *Cel) setUserData(s string) { c.UserData = s }

// FrameTag is a named inclusive range of frames.
type FrameTag struct {
	From, To   int
	Name       string
	Properties map[string]struct{}
	Direction  LoopAnimationDirection
	Repeat     RepeatTimes
	UserData   string
}

// Has reports whether the tag carries the property, e.g. "loop".
func (t *FrameTag) Has(property string) bool {
	_, ok := t.Properties[property]
	return ok
}

func (t *FrameTag) setUserData(s string) { t.UserData = s }

// LayerType classifies a layer.
type LayerType uint8

const (
	Content LayerType = iota
	Meta
)

func (t LayerType) String() string {
	if t == Meta {
		return "Meta"
	}
	return "Content"
}

// Param is a typed, positional meta layer parameter.
type (
	Param     = action.Param
	ParamKind = action.ParamKind
)

const (
	ParamNone   = action.ParamNone
	ParamString = action.ParamString
	ParamNumber = action.ParamNumber
	ParamBool   = action.ParamBool
)

// Layer is an image layer. Meta layers carry an action instead of pixels.
type Layer struct {
	Index     int
	BlendMode BlendMode
	Opacity   float64
	Name      string
	Type      LayerType
	UserData  string

	// Action is set for meta layers.
	Action string
	params []Param

	group GroupID
	file  *File
}

// Group returns the group owning the layer.
func (l *Layer) Group() *Group {
	return l.file.Group(l.group)
}

// Path returns the path of the owning group.
func (l *Layer) Path() string {
	return l.Group().Path()
}

func (l *Layer) setUserData(s string) { l.UserData = s }

func (l *Layer) ParamCount() int { return len(l.params) }

// Params returns a copy of the parameter list.
func (l *Layer) Params() []Param {
	return append([]Param(nil), l.params...)
}

// ParamType returns ParamNone when index is out of range.
func (l *Layer) ParamType(index int) ParamKind {
	if index < 0 || index >= len(l.params) {
		return ParamNone
	}
	return l.params[index].Kind
}

func (l *Layer) ParamInt(index int) (int, error) {
	p, err := l.checkParam(index, ParamNumber)
	return int(p.Number), err
}

func (l *Layer) ParamFloat(index int) (float64, error) {
	p, err := l.checkParam(index, ParamNumber)
	return p.Number, err
}

func (l *Layer) ParamString(index int) (string, error) {
	p, err := l.checkParam(index, ParamString)
	return p.Str, err
}

func (l *Layer) ParamBool(index int) (bool, error) {
	p, err := l.checkParam(index, ParamBool)
	return p.Bool, err
}

func (l *Layer) checkParam(index int, kind ParamKind) (Param, error) {
	if index < 0 || index >= len(l.params) {
		return Param{}, &ParamError{Layer: l.Name, Index: index, Want: kind, Count: len(l.params)}
	}
	p := l.params[index]
	if p.Kind != kind {
		return Param{}, &ParamError{Layer: l.Name, Index: index, Want: kind, Got: p.Kind, Count: len(l.params)}
	}
	return p, nil
}
