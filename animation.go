package metasprite

import "time"

// Animation plays the frames of one tag.
type Animation struct {
	Frames     []int           // frame indices in play order
	Duration   []time.Duration // how long each entry of Frames is displayed
	Index      int             // position in Frames
	LastChange time.Time       // updated each time the frame changes
	Loop       bool
	Done       bool // a non-looping animation reached its last frame
}

// NewAnimation builds the play order of tag honoring its direction. It loops
// when the tag carries the "loop" property.
func (f *File) NewAnimation(tag *FrameTag, now time.Time) *Animation {
	order := playOrder(tag)
	a := &Animation{
		Frames:     order,
		Duration:   make([]time.Duration, len(order)),
		LastChange: now,
		Loop:       tag.Has("loop"),
	}
	for i, fr := range order {
		a.Duration[i] = f.Frames[fr].DurationTime()
	}
	return a
}

func playOrder(tag *FrameTag) []int {
	var fwd []int
	for i := tag.From; i <= tag.To; i++ {
		fwd = append(fwd, i)
	}
	rev := make([]int, len(fwd))
	for i, fr := range fwd {
		rev[len(fwd)-1-i] = fr
	}

	switch tag.Direction {
	case Reverse:
		return rev
	case PingPong:
		if len(fwd) > 2 {
			return append(fwd, rev[1:len(rev)-1]...)
		}
		return fwd
	case PingPongReverse:
		if len(rev) > 2 {
			return append(rev, fwd[1:len(fwd)-1]...)
		}
		return rev
	default:
		return fwd
	}
}

// Frame returns the frame index currently displayed.
func (a *Animation) Frame() int {
	return a.Frames[a.Index]
}

// Update advances the animation to now, skipping as many frames as elapsed.
// It reports whether the displayed frame changed.
func (a *Animation) Update(now time.Time) bool {
	if len(a.Frames) < 2 || a.Done {
		return false
	}
	changed := false
	for {
		d := a.Duration[a.Index]
		if d <= 0 || now.Sub(a.LastChange) < d {
			return changed
		}
		a.LastChange = a.LastChange.Add(d)
		if a.Index == len(a.Frames)-1 {
			if !a.Loop {
				a.Done = true
				return changed
			}
			a.Index = 0
		} else {
			a.Index++
		}
		changed = true
	}
}

// Reset rewinds to the first frame.
func (a *Animation) Reset(now time.Time) {
	a.Index = 0
	a.LastChange = now
	a.Done = false
}
