package metasprite

import (
	"fmt"
	"strings"

	"github.com/retroblast-engine/metasprite/internal/action"
)

// hierarchy rebuilds the group tree from the flat, level-tagged stream of
// layer chunks.
type hierarchy struct {
	p      *parser
	levels map[int]int // child level -> most recent layer index at that level
	next   int         // index assigned to the next layer chunk
}

func newHierarchy(p *parser) *hierarchy {
	return &hierarchy{p: p, levels: make(map[int]int)}
}

// addLayer consumes one layer chunk. It returns the layer when one was added
// to the file, nil when the chunk was a group or was skipped.
func (h *hierarchy) addLayer(hdr layerChunk, opacity float64, name string, off int64) (*Layer, error) {
	index := h.next
	level := int(hdr.ChildLevel)
	// Skipped layers still take an index and a level slot so later
	// references stay aligned with the stream.
	defer func() {
		h.levels[level] = index
		h.next++
	}()

	if hdr.Flags&layerFlagVisible == 0 {
		return nil, nil
	}

	parentIndex, err := h.parentIndex(level, off)
	if err != nil {
		return nil, err
	}
	parent, ok := h.p.file.indexToGroup[parentIndex]
	if !ok {
		// The parent chunk was skipped, so is everything below it.
		return nil, nil
	}

	switch hdr.Type {
	case layerTypeGroup:
		return nil, h.addGroup(index, parent, name, off)
	case layerTypeImage:
		if strings.HasPrefix(name, commentMarker) {
			return nil, nil
		}
		return h.addImageLayer(index, parent, hdr, opacity, name, off)
	case layerTypeTilemap:
		return nil, h.p.warn("layer", off, "tilemap layer %q is not supported, skipped", name)
	default:
		return nil, h.p.warn("layer", off, "layer %q has unknown type %d, skipped", name, hdr.Type)
	}
}

func (h *hierarchy) parentIndex(level int, off int64) (int, error) {
	if level == 0 {
		return rootIndex, nil
	}
	idx, ok := h.levels[level-1]
	if !ok {
		return 0, formatErrorf(off, "layer at child level %d has no layer at level %d above it", level, level-1)
	}
	return idx, nil
}

func (h *hierarchy) addGroup(index int, parent GroupID, name string, off int64) error {
	f := h.p.file
	g := &Group{Index: index, parent: parent}
	problems := g.setName(name)

	if !g.Available() {
		// Commented-out groups collapse into their parent.
		f.indexToGroup[index] = parent
		return nil
	}
	for _, msg := range problems {
		if err := h.p.warn("group", off, "%s", msg); err != nil {
			return err
		}
	}

	return h.attach(h.resolve(g, index, name), index, off)
}

// resolve settles the canonical identity of a redirected group. When the
// destination does not exist yet, g itself is promoted to be the destination
// and a pass-through group takes over the stream index below it.
func (h *hierarchy) resolve(g *Group, index int, name string) *Group {
	if !g.HasDestination() {
		return g
	}
	f := h.p.file
	if destID, ok := f.nameToGroup[g.DestName]; ok {
		g.parent = destID
		return g
	}

	dest := g
	dest.setName(dest.DestName)
	dest.Index = -index - destIndexBase
	f.adopt(dest)
	f.register(dest)
	f.groups[dest.parent].children = append(f.groups[dest.parent].children, dest.id)

	through := &Group{Index: index, parent: dest.id}
	through.setName(name)
	return through
}

// attach registers g, or re-indexes an existing group with the same display
// name onto the current stream index.
func (h *hierarchy) attach(g *Group, index int, off int64) error {
	f := h.p.file
	if existingID, ok := f.nameToGroup[g.Name]; ok {
		existing := f.groups[existingID]
		if existing.IsRoot() {
			f.indexToGroup[index] = existingID
			return h.p.warn("group", off, "group %q has the name of the root group, merged into it", g.RawName)
		}
		delete(f.indexToGroup, existing.Index)
		existing.Index = index
		f.indexToGroup[index] = existingID
		return nil
	}

	f.adopt(g)
	f.register(g)
	f.groups[g.parent].children = append(f.groups[g.parent].children, g.id)
	return nil
}

func (f *File) register(g *Group) {
	f.indexToGroup[g.Index] = g.id
	f.nameToGroup[g.Name] = g.id
	f.registered = append(f.registered, g.id)
}

func (h *hierarchy) addImageLayer(index int, parent GroupID, hdr layerChunk, opacity float64, name string, off int64) (*Layer, error) {
	f := h.p.file
	layer := &Layer{
		Index:     index,
		BlendMode: BlendMode(hdr.BlendMode),
		Opacity:   opacity,
		Name:      name,
		group:     parent,
		file:      f,
	}
	if int(layer.BlendMode) >= len(blendModeNames) {
		if err := h.p.warn("layer", off, "layer %q has unknown blend mode %d, using Normal", name, hdr.BlendMode); err != nil {
			return nil, err
		}
		layer.BlendMode = BlendNormal
	}
	group := f.groups[parent]

	if !strings.HasPrefix(name, metaSentinel) {
		layer.Type = Content
		f.ContentLayers[index] = layer
		group.ContentLayers = append(group.ContentLayers, layer)
		return layer, nil
	}

	layer.Type = Meta
	act, err := action.Parse(strings.TrimPrefix(name, metaSentinel))
	if err != nil {
		if h.p.opts.skipInvalidMetas {
			return nil, h.p.warn("action", off, "meta layer %q skipped: %v", name, err)
		}
		return nil, fmt.Errorf("meta layer %q: %w", name, err)
	}
	if act.Trailing != "" {
		if err := h.p.warn("action", off, "invalid content after action in layer %q: %q", name, act.Trailing); err != nil {
			return nil, err
		}
	}
	layer.Action = act.Name
	layer.params = act.Params

	f.MetaLayers[index] = layer
	f.metaOrder = append(f.metaOrder, index)
	group.MetaLayers = append(group.MetaLayers, layer)
	return layer, nil
}
