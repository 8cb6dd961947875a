package bboxlabel

// The interactive editing state machine for the boxes of one image.

import (
	"fmt"
)

// State is the editor's interaction state.
type State int

// The editor states. Every state returns to StateIdle on pointer release.
const (
	StateIdle State = iota
	StateDrawing
	StateEditingHandle
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateEditingHandle:
		return "editing"
	case StatePanning:
		return "panning"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EventKind is the type of an input event.
type EventKind int

// The input event kinds.
const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	KeyCommand
)

// Button is a pointer button.
type Button int

// The pointer buttons.
const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonMiddle // Pans.
)

// Command is a keyboard command.
type Command int

// The keyboard commands.
const (
	CmdNone Command = iota
	CmdNextImage
	CmdPrevImage
	CmdDeleteSelected
	CmdUndoLast
	CmdClearAll
	CmdSelectClass // Uses Event.ClassIndex.
	CmdZoomIn
	CmdZoomOut
	CmdZoomFit
	CmdSave
)

// Event is an abstract pointer or keyboard event. Pointer positions are in display space.
type Event struct {
	Kind        EventKind
	Button      Button
	Pos         Point
	PanModifier bool // E.g. the space bar is held.
	Command     Command
	ClassIndex  int
}

// NoticeKind is the type of a notification emitted by the editor.
type NoticeKind int

// The notification kinds.
const (
	NoticeRedraw           NoticeKind = iota // The display needs repainting.
	NoticeSelectionChanged                   // Notice.Index is the selected box or -1.
	NoticeBoxesChanged                       // Notice.Index is the new box count.
	NoticeViewportChanged                    // Zoom or pan changed.
	NoticeClassChanged                       // Notice.Index is the active class id.
	NoticeNoClassSelected                    // A draw gesture was rejected.
	NoticeNavigate                           // Notice.Index is the requested image step (+1 / -1).
	NoticeSave                               // The user asked to save.
)

// Notice is a notification from the editor to the surrounding application.
type Notice struct {
	Kind  NoticeKind
	Index int
}

// Snapshot is what a display needs to paint the editor.
type Snapshot struct {
	State    State
	Zoom     float64
	Pan      Point
	Boxes    []BoundingBox
	Selected int
	Preview  *Rect // The rectangle being drawn, if any.
}

// Editor consumes input events for one image at a time and edits that image's boxes. It performs
// no I/O; navigation and saving are requested through notices.
//
// An Editor is not safe for concurrent use. Events must be delivered from a single goroutine.
type Editor struct {
	cfg     EditorConfig
	zoomCfg ViewportConfig
	project *Project
	notify  func(Notice)

	ann  *ImageAnnotation
	view *Viewport

	state    State
	anchor   Point // Image space in Drawing and EditingHandle, display space in Panning.
	current  Point // Image space end point of the drawing gesture.
	edit     int   // Index of the box being edited.
	handle   Handle
	selected int
	class    int
}

// NewEditor creates an editor for the boxes of project. notify may be nil. Size thresholds that
// are not positive get their default values.
func NewEditor(cfg Config, project *Project, notify func(Notice)) *Editor {
	if notify == nil {
		notify = func(Notice) {}
	}
	def := DefaultConfig().Editor
	if cfg.Editor.MinBoxSize <= 0 {
		cfg.Editor.MinBoxSize = def.MinBoxSize
	}
	if cfg.Editor.MinDrawSize <= 0 {
		cfg.Editor.MinDrawSize = def.MinDrawSize
	}
	e := &Editor{
		cfg:      cfg.Editor,
		zoomCfg:  cfg.Viewport,
		project:  project,
		notify:   notify,
		selected: -1,
		edit:     -1,
		handle:   HandleNone,
		class:    -1,
	}
	if len(project.Classes) > 0 {
		e.class = 0
	}
	return e
}

// SetImage switches the editor to another image. Any gesture in progress is dropped and the
// selection is cleared.
func (e *Editor) SetImage(ann *ImageAnnotation, view *Viewport) {
	e.ann = ann
	e.view = view
	e.reset()
	e.setSelected(-1)
	e.notify(Notice{Kind: NoticeBoxesChanged, Index: len(ann.Boxes)})
	e.notify(Notice{Kind: NoticeViewportChanged})
	e.notify(Notice{Kind: NoticeRedraw})
}

// State returns the current interaction state.
func (e *Editor) State() State {
	return e.state
}

// Selected returns the selected box index, or -1.
func (e *Editor) Selected() int {
	return e.selected
}

// ActiveClass returns the active class id, or -1.
func (e *Editor) ActiveClass() int {
	return e.class
}

// Annotation returns the annotation being edited.
func (e *Editor) Annotation() *ImageAnnotation {
	return e.ann
}

// Viewport returns the viewport of the current image.
func (e *Editor) Viewport() *Viewport {
	return e.view
}

// Snapshot returns a copy of the state needed for painting.
func (e *Editor) Snapshot() Snapshot {
	s := Snapshot{State: e.state, Selected: e.selected}
	if e.view != nil {
		s.Zoom = e.view.Zoom()
		s.Pan = e.view.Pan()
	}
	if e.ann != nil {
		s.Boxes = append([]BoundingBox{}, e.ann.Boxes...)
	}
	if e.state == StateDrawing {
		r := e.previewRect()
		s.Preview = &r
	}
	return s
}

// SelectBox selects the box at index i, or clears the selection for an out of range index.
func (e *Editor) SelectBox(i int) {
	if e.ann == nil || i < 0 || i >= len(e.ann.Boxes) {
		i = -1
	}
	e.setSelected(i)
}

// SelectClass makes class id i the class of newly drawn boxes. Out of range ids are ignored.
func (e *Editor) SelectClass(i int) bool {
	if i < 0 || i >= len(e.project.Classes) {
		return false
	}
	if e.class != i {
		e.class = i
		e.notify(Notice{Kind: NoticeClassChanged, Index: i})
	}
	return true
}

// HoverHandle returns the handle under the display point pos, HandleMove for a box body, or
// HandleNone. It is meant for cursor feedback.
func (e *Editor) HoverHandle(pos Point) Handle {
	if e.ann == nil || e.view == nil {
		return HandleNone
	}
	p := e.view.DisplayToImage(pos)
	if _, h := FindHandleAt(p, e.ann.Boxes, e.selected, e.tolerance()); h != HandleNone {
		return h
	}
	if FindTopBoxAt(p, e.ann.Boxes) >= 0 {
		return HandleMove
	}
	return HandleNone
}

// Handle processes one input event. It returns ErrNoClassSelected when a draw gesture is rejected
// and nil otherwise; events that are not valid in the current state are ignored.
func (e *Editor) Handle(ev Event) error {
	if e.ann == nil || e.view == nil {
		return nil
	}

	switch ev.Kind {
	case PointerDown:
		return e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev)
	case PointerUp:
		e.pointerUp(ev)
	case KeyCommand:
		if e.state == StateIdle {
			e.command(ev)
		}
	}
	return nil
}

func (e *Editor) pointerDown(ev Event) error {
	if e.state != StateIdle {
		return nil
	}

	// Panning.
	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.PanModifier) {
		e.state = StatePanning
		e.anchor = ev.Pos
		return nil
	}

	p := e.view.DisplayToImage(ev.Pos).Round()

	switch ev.Button {
	case ButtonPrimary:
		// Resize through a handle.
		if i, h := FindHandleAt(p, e.ann.Boxes, e.selected, e.tolerance()); h != HandleNone {
			e.beginEdit(i, h, p)
			return nil
		}

		// Move a box.
		if i := FindTopBoxAt(p, e.ann.Boxes); i >= 0 {
			e.beginEdit(i, HandleMove, p)
			return nil
		}

		// Draw a new box.
		if e.class < 0 || e.class >= len(e.project.Classes) {
			e.notify(Notice{Kind: NoticeNoClassSelected})
			return ErrNoClassSelected
		}
		e.state = StateDrawing
		e.anchor = p
		e.current = p
		e.notify(Notice{Kind: NoticeRedraw})

	case ButtonSecondary:
		if i := FindTopBoxAt(p, e.ann.Boxes); i >= 0 {
			e.removeBox(i)
		}
	}
	return nil
}

func (e *Editor) beginEdit(i int, h Handle, p Point) {
	e.state = StateEditingHandle
	e.edit = i
	e.handle = h
	e.anchor = p
	e.setSelected(i)
}

func (e *Editor) pointerMove(ev Event) {
	switch e.state {
	case StatePanning:
		e.view.Translate(ev.Pos.X-e.anchor.X, ev.Pos.Y-e.anchor.Y)
		e.anchor = ev.Pos
		e.notify(Notice{Kind: NoticeViewportChanged})
		e.notify(Notice{Kind: NoticeRedraw})

	case StateDrawing:
		e.current = e.view.DisplayToImage(ev.Pos).Round()
		e.notify(Notice{Kind: NoticeRedraw})

	case StateEditingHandle:
		p := e.view.DisplayToImage(ev.Pos).Round()
		dx := int(p.X - e.anchor.X)
		dy := int(p.Y - e.anchor.Y)
		// Deltas are incremental, so a clamped edge does not jump once the pointer returns.
		e.anchor = p
		if dx == 0 && dy == 0 {
			return
		}
		e.applyEdit(dx, dy)
	}
}

// applyEdit applies a pointer delta to the box being edited.
func (e *Editor) applyEdit(dx, dy int) {
	if e.edit < 0 || e.edit >= len(e.ann.Boxes) {
		return
	}
	w, h := e.ann.ImageWidth, e.ann.ImageHeight
	box := e.ann.Boxes[e.edit]

	r := ApplyHandleDelta(box.Rect(), e.handle, dx, dy)
	if e.handle == HandleMove {
		r = keepInside(r, w, h)
	} else {
		r = clipDraggedEdges(r, e.handle, w, h)
		r = ClampRect(r, e.handle, e.cfg.MinBoxSize)
		r = keepInside(r, w, h)
	}

	if err := box.SetRect(r, w, h); err != nil {
		// Only possible for an annotation without a valid image size.
		return
	}
	e.ann.Boxes[e.edit] = box
	e.notify(Notice{Kind: NoticeRedraw})
}

func (e *Editor) pointerUp(ev Event) {
	switch e.state {
	case StateDrawing:
		e.current = e.view.DisplayToImage(ev.Pos).Round()
		e.commitDrawing()
	case StateEditingHandle:
		e.notify(Notice{Kind: NoticeBoxesChanged, Index: len(e.ann.Boxes)})
	}

	if e.state != StateIdle {
		e.reset()
		e.notify(Notice{Kind: NoticeRedraw})
	}
}

// commitDrawing adds the drawn box if it is large enough.
func (e *Editor) commitDrawing() {
	r := e.previewRect()
	if r.Width <= e.cfg.MinDrawSize || r.Height <= e.cfg.MinDrawSize {
		return
	}

	box, err := e.ann.NewBox(e.project.Classes[e.class], e.class, r)
	if err != nil {
		return
	}
	e.ann.Boxes = append(e.ann.Boxes, box)
	e.notify(Notice{Kind: NoticeBoxesChanged, Index: len(e.ann.Boxes)})
}

// previewRect is the drawn rectangle clipped to the image.
func (e *Editor) previewRect() Rect {
	return ClipRect(NormalizeRect(e.anchor, e.current), e.ann.ImageWidth, e.ann.ImageHeight)
}

func (e *Editor) command(ev Event) {
	switch ev.Command {
	case CmdNextImage:
		e.notify(Notice{Kind: NoticeNavigate, Index: 1})
	case CmdPrevImage:
		e.notify(Notice{Kind: NoticeNavigate, Index: -1})
	case CmdDeleteSelected:
		if e.selected >= 0 {
			e.removeBox(e.selected)
		}
	case CmdUndoLast:
		if n := len(e.ann.Boxes); n > 0 {
			e.removeBox(n - 1)
		}
	case CmdClearAll:
		e.ClearAll()
	case CmdSelectClass:
		e.SelectClass(ev.ClassIndex)
	case CmdZoomIn:
		e.zoom(e.zoomStep())
	case CmdZoomOut:
		e.zoom(-e.zoomStep())
	case CmdZoomFit:
		e.view.ResetToFit()
		e.notify(Notice{Kind: NoticeViewportChanged})
		e.notify(Notice{Kind: NoticeRedraw})
	case CmdSave:
		e.notify(Notice{Kind: NoticeSave})
	}
}

// ZoomAt changes the zoom by delta around the display point pivot, e.g. for a scroll wheel. It is
// ignored while a gesture is in progress.
func (e *Editor) ZoomAt(delta float64, pivot Point) {
	if e.view == nil || e.state != StateIdle {
		return
	}
	e.view.AdjustZoom(delta, pivot)
	e.notify(Notice{Kind: NoticeViewportChanged})
	e.notify(Notice{Kind: NoticeRedraw})
}

func (e *Editor) zoom(delta float64) {
	e.view.ZoomAroundCenter(delta)
	e.notify(Notice{Kind: NoticeViewportChanged})
	e.notify(Notice{Kind: NoticeRedraw})
}

func (e *Editor) zoomStep() float64 {
	if e.zoomCfg.ZoomStep > 0 {
		return e.zoomCfg.ZoomStep
	}
	return DefaultZoomStep
}

// ClearAll removes all boxes of the current image.
func (e *Editor) ClearAll() {
	if e.ann == nil || len(e.ann.Boxes) == 0 {
		return
	}
	e.ann.Boxes = e.ann.Boxes[:0]
	e.setSelected(-1)
	e.notify(Notice{Kind: NoticeBoxesChanged, Index: 0})
	e.notify(Notice{Kind: NoticeRedraw})
}

// removeBox deletes box i and keeps the selection on the same box where possible.
func (e *Editor) removeBox(i int) {
	if !e.ann.RemoveBox(i) {
		return
	}
	switch {
	case e.selected == i:
		e.setSelected(-1)
	case e.selected > i:
		e.setSelected(e.selected - 1)
	}
	e.notify(Notice{Kind: NoticeBoxesChanged, Index: len(e.ann.Boxes)})
	e.notify(Notice{Kind: NoticeRedraw})
}

func (e *Editor) setSelected(i int) {
	if e.selected == i {
		return
	}
	e.selected = i
	e.notify(Notice{Kind: NoticeSelectionChanged, Index: i})
}

func (e *Editor) reset() {
	e.state = StateIdle
	e.edit = -1
	e.handle = HandleNone
}

// tolerance converts the handle tolerance from display pixels to image pixels.
func (e *Editor) tolerance() float64 {
	tol := e.cfg.HandleTolerance
	if tol <= 0 {
		tol = DefaultConfig().Editor.HandleTolerance
	}
	return tol / e.view.Zoom()
}
