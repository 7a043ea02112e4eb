package avatar

import (
	"strconv"
	"strings"
)

// Size is a requested avatar box. Callers pass either a single edge (Square)
// or a width/height pair (Rect).
type Size struct {
	Width  int
	Height int
}

// MaxEdge is the largest width or height a request may ask for.
const MaxEdge = 4096

func Square(n int) Size { return Size{Width: n, Height: n} }

func Rect(w, h int) Size { return Size{Width: w, Height: h} }

// orDefault fills a missing edge from the other one, or both from def.
func (s Size) orDefault(def int) Size {
	switch {
	case s.Width <= 0 && s.Height <= 0:
		return Square(def)
	case s.Height <= 0:
		s.Height = s.Width
	case s.Width <= 0:
		s.Width = s.Height
	}
	return s
}

// Bounded clamps each edge into [0, MaxEdge]; zero edges are later filled
// from the default size.
func (s Size) Bounded() Size {
	return Size{Width: clampEdge(s.Width), Height: clampEdge(s.Height)}
}

func clampEdge(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxEdge:
		return MaxEdge
	}
	return n
}

// ParseSize accepts "150", "150x100" and "150,100".
func ParseSize(raw string) (Size, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return Size{}, false
	}
	sep := strings.IndexAny(raw, "x,")
	if sep < 0 {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Size{}, false
		}
		return Square(n), true
	}
	w, errW := strconv.Atoi(strings.TrimSpace(raw[:sep]))
	h, errH := strconv.Atoi(strings.TrimSpace(raw[sep+1:]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return Size{}, false
	}
	return Rect(w, h), true
}
