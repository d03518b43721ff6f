// Package ebitensprite turns the groups of a parsed file into ebiten images
// with one playable state per frame tag.
package ebitensprite

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retroblast-engine/metasprite"
)

// Sprites holds the rendered frames of a group.
type Sprites struct {
	Current *ebiten.Image
	All     []*ebiten.Image // one per file frame
}

// State is a frame tag of a sprite.
type State struct {
	Name          string
	Tag           *metasprite.FrameTag
	Frames        []*ebiten.Image // in play order
	HasAnimations bool
	Animation     *metasprite.Animation
}

// Sprite is one group of a file, rendered for every frame.
type Sprite struct {
	Path    string
	Sprites Sprites
	States  map[string]*State

	current *State
}

// New renders the content layers of g for every frame of f. Tags sharing a
// name with an earlier tag get no state.
func New(f *metasprite.File, g *metasprite.Group) *Sprite {
	s := &Sprite{
		Path:   g.Path(),
		States: make(map[string]*State, len(f.FrameTags)),
	}
	for i := range f.Frames {
		s.Sprites.All = append(s.Sprites.All, ebiten.NewImageFromImage(f.RenderGroup(g, i)))
	}
	if len(s.Sprites.All) > 0 {
		s.Sprites.Current = s.Sprites.All[0]
	}

	now := time.Now()
	for _, tag := range f.FrameTags {
		if _, dup := s.States[tag.Name]; dup {
			continue
		}
		anim := f.NewAnimation(tag, now)
		state := &State{
			Name:          tag.Name,
			Tag:           tag,
			HasAnimations: len(anim.Frames) > 1,
			Animation:     anim,
		}
		for _, fr := range anim.Frames {
			state.Frames = append(state.Frames, s.Sprites.All[fr])
		}
		s.States[tag.Name] = state
	}
	return s
}

// NewAll renders every available group owning content layers, keyed by path.
func NewAll(f *metasprite.File) map[string]*Sprite {
	out := make(map[string]*Sprite)
	for _, g := range f.AvailableGroups() {
		if len(g.ContentLayers) == 0 {
			continue
		}
		out[g.Path()] = New(f, g)
	}
	return out
}

// SetState switches to the named state and restarts it.
func (s *Sprite) SetState(name string, now time.Time) error {
	state, ok := s.States[name]
	if !ok {
		return fmt.Errorf("sprite %s has no state %q", s.Path, name)
	}
	s.current = state
	state.Animation.Reset(now)
	s.Sprites.Current = state.Frames[0]
	return nil
}

// State returns the current state, nil before SetState.
func (s *Sprite) State() *State {
	return s.current
}

// Update advances the current state's animation.
func (s *Sprite) Update(now time.Time) {
	st := s.current
	if st == nil || !st.HasAnimations {
		return
	}
	if st.Animation.Update(now) {
		s.Sprites.Current = st.Frames[st.Animation.Index]
	}
}

// Image returns the frame to display.
func (s *Sprite) Image() *ebiten.Image {
	return s.Sprites.Current
}

// Draw draws the current frame onto screen.
func (s *Sprite) Draw(screen *ebiten.Image, opts *ebiten.DrawImageOptions) {
	if s.Sprites.Current == nil {
		return
	}
	screen.DrawImage(s.Sprites.Current, opts)
}
