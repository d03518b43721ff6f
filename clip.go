package metasprite

import "time"

// Animated properties written by processors.
const (
	PropertyPositionX = "localPosition.x"
	PropertyPositionY = "localPosition.y"
)

// Vec2 is a 2D vector in texture or world space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// CurveKey is one constant-interpolated key of a Curve.
type CurveKey struct {
	Time  time.Duration
	Value float64
}

// Curve is a step curve keyed by time offset from the clip start.
type Curve struct {
	Keys []CurveKey
}

// AddKey inserts a key, replacing any key at the same time.
func (c *Curve) AddKey(t time.Duration, v float64) {
	for i, k := range c.Keys {
		switch {
		case k.Time == t:
			c.Keys[i].Value = v
			return
		case k.Time > t:
			c.Keys = append(c.Keys[:i], append([]CurveKey{{t, v}}, c.Keys[i:]...)...)
			return
		}
	}
	c.Keys = append(c.Keys, CurveKey{t, v})
}

// KeyAt returns the value of the key placed exactly at t.
func (c *Curve) KeyAt(t time.Duration) (float64, bool) {
	for _, k := range c.Keys {
		if k.Time == t {
			return k.Value, true
		}
	}
	return 0, false
}

// Evaluate returns the value of the last key at or before t.
func (c *Curve) Evaluate(t time.Duration) float64 {
	if len(c.Keys) == 0 {
		return 0
	}
	v := c.Keys[0].Value
	for _, k := range c.Keys {
		if k.Time > t {
			break
		}
		v = k.Value
	}
	return v
}

// CurveBinding names the animated property of a group.
type CurveBinding struct {
	Path     string // group path
	Property string
}

// Clip is the animation generated for one frame tag.
type Clip struct {
	Name     string
	Tag      *FrameTag
	Loop     bool
	Duration time.Duration

	// Sprites holds, per group path, the frame shown over time.
	Sprites map[string][]Keyframe
	Curves  map[CurveBinding]*Curve
}

// Curve returns the curve bound to the group path and property, nil if unset.
func (c *Clip) Curve(path, property string) *Curve {
	return c.Curves[CurveBinding{Path: path, Property: property}]
}

func (c *Clip) SetCurve(path, property string, curve *Curve) {
	c.Curves[CurveBinding{Path: path, Property: property}] = curve
}

// BuildClips creates one clip per frame tag with a sprite track for every
// available group that owns content layers. A sprite track ends with a key at
// the clip duration holding the last frame of the tag. Tags named like an
// earlier tag get no clip; DuplicateTags lists them.
func BuildClips(f *File) map[string]*Clip {
	clips := make(map[string]*Clip, len(f.FrameTags))
	for _, tag := range f.FrameTags {
		if _, dup := clips[tag.Name]; dup {
			continue
		}
		clip := &Clip{
			Name:     tag.Name,
			Tag:      tag,
			Loop:     tag.Has("loop"),
			Duration: f.TagDuration(tag),
			Sprites:  make(map[string][]Keyframe),
			Curves:   make(map[CurveBinding]*Curve),
		}
		keys := append(f.Keyframes(tag), Keyframe{Time: clip.Duration, Frame: tag.To})
		for _, g := range f.AvailableGroups() {
			if len(g.ContentLayers) == 0 {
				continue
			}
			clip.Sprites[g.Path()] = keys
		}
		clips[tag.Name] = clip
	}
	return clips
}

// DuplicateTags returns the tags whose name is already used by an earlier tag.
func (f *File) DuplicateTags() []*FrameTag {
	var dups []*FrameTag
	seen := make(map[string]struct{}, len(f.FrameTags))
	for _, tag := range f.FrameTags {
		if _, ok := seen[tag.Name]; ok {
			dups = append(dups, tag)
			continue
		}
		seen[tag.Name] = struct{}{}
	}
	return dups
}
