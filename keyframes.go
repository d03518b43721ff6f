package metasprite

import "time"

// Keyframe places a frame's sprite at an offset from the start of a tag.
type Keyframe struct {
	Time  time.Duration
	Frame int
}

// Keyframes returns one keyframe per frame of tag, timed by the cumulative
// duration of the frames before it.
func (f *File) Keyframes(tag *FrameTag) []Keyframe {
	keys := make([]Keyframe, 0, tag.To-tag.From+1)
	var t time.Duration
	for i := tag.From; i <= tag.To; i++ {
		frame := f.Frames[i]
		keys = append(keys, Keyframe{Time: t, Frame: frame.ID})
		t += frame.DurationTime()
	}
	return keys
}

// TagDuration is the total play time of one pass over tag.
func (f *File) TagDuration(tag *FrameTag) time.Duration {
	var t time.Duration
	for i := tag.From; i <= tag.To; i++ {
		t += f.Frames[i].DurationTime()
	}
	return t
}

// LayerFrames returns the frames holding a cel for the layer, in order.
func (f *File) LayerFrames(layerIndex int) []int {
	var out []int
	for _, frame := range f.Frames {
		if _, ok := frame.Cels[layerIndex]; ok {
			out = append(out, frame.ID)
		}
	}
	return out
}

// FrameTag looks a tag up by name.
func (f *File) FrameTag(name string) *FrameTag {
	for _, tag := range f.FrameTags {
		if tag.Name == name {
			return tag
		}
	}
	return nil
}
