package metasprite

import (
	"strings"
	"sync"
)

// Group name markers.
const (
	commentMarker  = "//"
	redirectMarker = "=>"
	metaSentinel   = "@"
	propertyMarker = "#"
)

const (
	rootIndex = -1
	// destIndexBase keeps indices of promoted destination groups clear of
	// stream-assigned ones.
	destIndexBase = 100
)

// GroupID is a stable handle into a File's group arena.
type GroupID int

// NoGroup is the parent of the root group.
const NoGroup GroupID = -1

// Group is a node of the layer hierarchy.
type Group struct {
	// Index is the stream index the group is reachable by. Promoted
	// destination groups get -(index)-100 until a later group re-indexes them.
	Index int

	RawName  string
	DestName string // non-empty only when RawName contains "=>"
	Name     string // display name

	ContentLayers []*Layer
	MetaLayers    []*Layer

	id       GroupID
	parent   GroupID
	children []GroupID
	file     *File

	pathOnce sync.Once
	path     string
}

func (f *File) newGroup(rawName string) *Group {
	g := &Group{parent: NoGroup, file: f}
	g.setName(rawName)
	f.adopt(g)
	return g
}

// adopt places g in the arena and assigns its handle.
func (f *File) adopt(g *Group) {
	g.id = GroupID(len(f.groups))
	g.file = f
	f.groups = append(f.groups, g)
}

// setName derives DestName and Name from a raw group name. It returns the
// problems found so the builder can report them.
func (g *Group) setName(raw string) (problems []string) {
	g.RawName = raw
	start := 0
	if strings.HasPrefix(raw, commentMarker) {
		start = len(commentMarker)
	}
	end := strings.Index(raw, redirectMarker)
	if end >= 0 {
		g.DestName = raw[end+len(redirectMarker):]
		if g.DestName == "" {
			problems = append(problems, "group "+raw+" has an empty redirect target")
		}
	} else {
		g.DestName = ""
		end = len(raw)
	}
	if end < start {
		end = start
	}

	if g.DestName != "" {
		g.Name = g.DestName + "_" + raw[start:end]
	} else {
		g.Name = raw[start:end]
	}
	if g.Name == "" {
		problems = append(problems, "group name is empty")
	}
	return problems
}

// ID returns the group's arena handle.
func (g *Group) ID() GroupID { return g.id }

// Available is false for commented-out groups.
func (g *Group) Available() bool {
	return !strings.HasPrefix(g.RawName, commentMarker)
}

// HasDestination reports whether the raw name redirects into another group.
func (g *Group) HasDestination() bool {
	return g.DestName != ""
}

// IsRoot reports whether g is the implicit root group.
func (g *Group) IsRoot() bool {
	return g.parent == NoGroup
}

// Parent returns nil for the root.
func (g *Group) Parent() *Group {
	if g.parent == NoGroup {
		return nil
	}
	return g.file.groups[g.parent]
}

func (g *Group) Children() []*Group {
	out := make([]*Group, len(g.children))
	for i, id := range g.children {
		out[i] = g.file.groups[id]
	}
	return out
}

// Path is the parent's path joined with the group's name by "/". The root's
// path is its name. It is computed once, after the hierarchy is final.
func (g *Group) Path() string {
	g.pathOnce.Do(func() {
		if p := g.Parent(); p != nil {
			g.path = p.Path() + "/" + g.Name
		} else {
			g.path = g.Name
		}
	})
	return g.path
}

// Root returns the implicit root group.
func (f *File) Root() *Group {
	return f.groups[0]
}

// Group resolves a handle, nil if it is out of range.
func (f *File) Group(id GroupID) *Group {
	if id < 0 || int(id) >= len(f.groups) {
		return nil
	}
	return f.groups[id]
}

// GroupByIndex resolves a stream index. Indices of commented-out groups
// resolve to their parent.
func (f *File) GroupByIndex(index int) *Group {
	id, ok := f.indexToGroup[index]
	if !ok {
		return nil
	}
	return f.groups[id]
}

// GroupByName looks up a group by display name.
func (f *File) GroupByName(name string) *Group {
	id, ok := f.nameToGroup[name]
	if !ok {
		return nil
	}
	return f.groups[id]
}

// Groups returns every named group in registration order, root first.
func (f *File) Groups() []*Group {
	out := make([]*Group, len(f.registered))
	for i, id := range f.registered {
		out[i] = f.groups[id]
	}
	return out
}

// AvailableGroups returns the named groups that are not commented out.
func (f *File) AvailableGroups() []*Group {
	var out []*Group
	for _, g := range f.Groups() {
		if g.Available() {
			out = append(out, g)
		}
	}
	return out
}
