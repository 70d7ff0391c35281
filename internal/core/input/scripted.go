package input

// Keyframe is a controller state held for Repeat consecutive frames. A
// Repeat below one counts as one.
type Keyframe struct {
	Frame  Frame
	Repeat int
}

// Scripted replays a fixed list of keyframes.
type Scripted struct {
	keys  []Keyframe
	index int
	count int
}

func NewScripted(keys ...Keyframe) *Scripted {
	return &Scripted{keys: keys}
}

func (s *Scripted) Next() (Frame, bool) {
	for s.index < len(s.keys) {
		k := s.keys[s.index]
		if s.count < max(k.Repeat, 1) {
			s.count++
			return k.Frame, true
		}
		s.index++
		s.count = 0
	}
	return Frame{}, false
}

// Frames is the total number of frames the script delivers.
func (s *Scripted) Frames() int {
	n := 0
	for _, k := range s.keys {
		n += max(k.Repeat, 1)
	}
	return n
}

// Rewind restarts the script from the first keyframe.
func (s *Scripted) Rewind() {
	s.index, s.count = 0, 0
}
