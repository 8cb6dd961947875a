package bboxlabel

// Hit-testing of boxes and their resize handles.

import "math"

// Handle identifies a resize or move handle of a box.
//
// Handles 0-3 are the corners in clockwise order from the top-left, handles 4-7 the edge
// midpoints (top, right, bottom, left). HandleMove stands for the box body.
type Handle int

// The known handles.
const (
	HandleNone        Handle = -1
	HandleTopLeft     Handle = 0
	HandleTopRight    Handle = 1
	HandleBottomRight Handle = 2
	HandleBottomLeft  Handle = 3
	HandleTop         Handle = 4
	HandleRight       Handle = 5
	HandleBottom      Handle = 6
	HandleLeft        Handle = 7
	HandleMove        Handle = 8
)

// numResizeHandles is the number of resize handles per box.
const numResizeHandles = 8

// String returns the handle name.
func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomRight:
		return "bottom-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleTop:
		return "top"
	case HandleRight:
		return "right"
	case HandleBottom:
		return "bottom"
	case HandleLeft:
		return "left"
	case HandleMove:
		return "move"
	}
	return "none"
}

func (h Handle) movesLeft() bool {
	return h == HandleTopLeft || h == HandleBottomLeft || h == HandleLeft
}

func (h Handle) movesTop() bool {
	return h == HandleTopLeft || h == HandleTopRight || h == HandleTop
}

func (h Handle) movesRight() bool {
	return h == HandleTopRight || h == HandleBottomRight || h == HandleRight
}

func (h Handle) movesBottom() bool {
	return h == HandleBottomLeft || h == HandleBottomRight || h == HandleBottom
}

// HandlePoints returns the image space positions of the eight resize handles of r, indexed by
// Handle.
func HandlePoints(r Rect) [numResizeHandles]Point {
	left := float64(r.X)
	top := float64(r.Y)
	right := float64(r.Right())
	bottom := float64(r.Bottom())
	midX := float64(r.X) + float64(r.Width)/2
	midY := float64(r.Y) + float64(r.Height)/2

	return [numResizeHandles]Point{
		HandleTopLeft:     {X: left, Y: top},
		HandleTopRight:    {X: right, Y: top},
		HandleBottomRight: {X: right, Y: bottom},
		HandleBottomLeft:  {X: left, Y: bottom},
		HandleTop:         {X: midX, Y: top},
		HandleRight:       {X: right, Y: midY},
		HandleBottom:      {X: midX, Y: bottom},
		HandleLeft:        {X: left, Y: midY},
	}
}

// FindHandle returns the resize handle of box nearest to p, if p is within tolerance of it on both
// axes. The tolerance is in image space units; callers working in display units divide by the
// zoom factor first.
func FindHandle(p Point, box Rect, tolerance float64) Handle {
	best := HandleNone
	bestDist := math.Inf(1)
	for i, hp := range HandlePoints(box) {
		dx := math.Abs(p.X - hp.X)
		dy := math.Abs(p.Y - hp.Y)
		if dx > tolerance || dy > tolerance {
			continue
		}
		if d := dx*dx + dy*dy; d < bestDist {
			best = Handle(i)
			bestDist = d
		}
	}
	return best
}

// FindHandleAt looks for a resize handle under p. The selected box (if selected is a valid index)
// is tested first, then all boxes from topmost to bottommost.
//
// Returns the box index and handle, or (-1, HandleNone).
func FindHandleAt(p Point, boxes []BoundingBox, selected int, tolerance float64) (int, Handle) {
	if selected >= 0 && selected < len(boxes) {
		if h := FindHandle(p, boxes[selected].Rect(), tolerance); h != HandleNone {
			return selected, h
		}
	}
	for i := len(boxes) - 1; i >= 0; i-- {
		if i == selected {
			continue
		}
		if h := FindHandle(p, boxes[i].Rect(), tolerance); h != HandleNone {
			return i, h
		}
	}
	return -1, HandleNone
}

// FindTopBoxAt returns the index of the most recently created box containing p, or -1.
func FindTopBoxAt(p Point, boxes []BoundingBox) int {
	for i := len(boxes) - 1; i >= 0; i-- {
		if boxes[i].Rect().Contains(p) {
			return i
		}
	}
	return -1
}

// ApplyHandleDelta applies a pointer delta (dx, dy) to r as dragged through handle h. Corners
// change both axes, edges only the axis normal to the edge, HandleMove translates the rectangle.
func ApplyHandleDelta(r Rect, h Handle, dx, dy int) Rect {
	if h == HandleMove {
		r.X += dx
		r.Y += dy
		return r
	}

	if h.movesLeft() {
		r.X += dx
		r.Width -= dx
	}
	if h.movesRight() {
		r.Width += dx
	}
	if h.movesTop() {
		r.Y += dy
		r.Height -= dy
	}
	if h.movesBottom() {
		r.Height += dy
	}
	return r
}

// clipDraggedEdges keeps the edges moved by h inside the image. Fixed edges are left alone.
func clipDraggedEdges(r Rect, h Handle, imageW, imageH int) Rect {
	if h.movesLeft() && r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if h.movesTop() && r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if h.movesRight() && r.Right() > imageW {
		r.Width = imageW - r.X
	}
	if h.movesBottom() && r.Bottom() > imageH {
		r.Height = imageH - r.Y
	}
	return r
}
