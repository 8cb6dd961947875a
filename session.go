package bboxlabel

// Navigation over an image list, tying the store, the viewport and the editor together.

import (
	"fmt"
	"image"
)

// ImageInfo describes one image of an image list.
type ImageInfo struct {
	Path   string
	Width  int
	Height int

	// Load decodes the pixels. It may be nil if the source cannot provide them.
	Load func() (image.Image, error)
}

// Decode returns the decoded image.
func (i ImageInfo) Decode() (image.Image, error) {
	if i.Load == nil {
		return nil, fmt.Errorf("no pixel data for %q", i.Path)
	}
	return i.Load()
}

// ImageSource is an ordered list of images.
type ImageSource interface {
	Len() int
	Image(index int) (ImageInfo, error)
}

// DirImageSource lists the image files of a directory, sorted by file name.
type DirImageSource struct {
	paths []string
}

// NewDirImageSource lists the files in dirPath with one of the extensions exts, ignoring case.
func NewDirImageSource(dirPath string, exts []string) (*DirImageSource, error) {
	paths, err := filesByExtInDir(dirPath, exts)
	if err != nil {
		return nil, err
	}
	return &DirImageSource{paths: paths}, nil
}

// Len returns the number of images.
func (s *DirImageSource) Len() int {
	return len(s.paths)
}

// Paths returns the image paths in list order.
func (s *DirImageSource) Paths() []string {
	return append([]string{}, s.paths...)
}

// Image returns the path and size of image index. The size is read from the file header; the
// pixels are decoded by ImageInfo.Decode.
func (s *DirImageSource) Image(index int) (ImageInfo, error) {
	if index < 0 || index >= len(s.paths) {
		return ImageInfo{}, fmt.Errorf("image index %d out of range [0, %d)", index, len(s.paths))
	}
	path := s.paths[index]
	cfg, _, err := decodeImageConfig(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode the image metadata of %q: %v", path, err)
	}
	return ImageInfo{
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Load:   func() (image.Image, error) { return loadImage(path) },
	}, nil
}

// Session is an editing session over the images of an ImageSource. It opens the annotation of the
// current image in the editor, carries out the navigation and save requests of the editor, and
// forwards all editor notices to the display.
//
// A Session is not safe for concurrent use.
type Session struct {
	cfg     Config
	store   *Store
	source  ImageSource
	project *Project
	editor  *Editor
	display func(Notice)
	logger  Logger

	index         int
	availW        float64
	availH        float64
	pendingNav    int  // Image step requested during Handle.
	pendingSave   bool // Save requested during Handle.
	handlingEvent bool
}

// NewSession creates a session for project over the images of source. display receives the
// editor notices and may be nil. No image is open until Open is called.
func NewSession(cfg Config, store *Store, project *Project, source ImageSource, logger Logger,
		display func(Notice)) *Session {

	if display == nil {
		display = func(Notice) {}
	}
	s := &Session{
		cfg:     cfg,
		store:   store,
		source:  source,
		project: project,
		display: display,
		logger:  loggerOrDiscard(logger),
		index:   -1,
	}
	s.editor = NewEditor(cfg, project, s.onNotice)
	return s
}

// Editor returns the editor of the session.
func (s *Session) Editor() *Editor {
	return s.editor
}

// Project returns the project being edited.
func (s *Session) Project() *Project {
	return s.project
}

// Index returns the index of the open image, or -1.
func (s *Session) Index() int {
	return s.index
}

// Stats returns the project statistics for the image list of the session.
func (s *Session) Stats() Stats {
	return s.project.Stats(s.source.Len())
}

// Open opens image index in the editor, creating its annotation on the first visit. The viewport
// is fitted to the current display area.
func (s *Session) Open(index int) error {
	info, err := s.source.Image(index)
	if err != nil {
		return err
	}

	ann := s.store.GetOrCreateAnnotation(s.project, info.Path, info.Width, info.Height)
	view := NewViewport(s.cfg.Viewport, ann.ImageWidth, ann.ImageHeight, s.availW, s.availH)
	s.index = index
	s.editor.SetImage(ann, view)
	return nil
}

// Navigate moves delta images forward (or backward for a negative delta), wrapping around at both
// ends of the list. With auto-save enabled, a project that has a path is saved before leaving the
// current image. A failed save is logged and returned, but does not prevent the navigation.
func (s *Session) Navigate(delta int) error {
	n := s.source.Len()
	if n == 0 {
		return fmt.Errorf("the image list is empty")
	}

	var saveErr error
	if s.cfg.Store.AutoSave && s.project.Path != "" && s.index >= 0 {
		if saveErr = s.store.Save(s.project, s.project.Path); saveErr != nil {
			s.logger.Printf("Warning: auto-save failed: %v", saveErr)
		}
	}

	next := 0
	if s.index >= 0 {
		next = ((s.index+delta)%n + n) % n
	}
	if err := s.Open(next); err != nil {
		return err
	}
	return saveErr
}

// Save saves the project to its path. A project that was never saved has no path; use SaveAs.
func (s *Session) Save() error {
	if s.project.Path == "" {
		return fmt.Errorf("%w: the project has no file path", ErrProjectSaveFailed)
	}
	return s.store.Save(s.project, s.project.Path)
}

// SaveAs saves the project to path. Later saves, including auto-saves, write to path.
func (s *Session) SaveAs(path string) error {
	return s.store.Save(s.project, path)
}

// Resize updates the display area available to the image.
func (s *Session) Resize(availW, availH float64) {
	s.availW, s.availH = availW, availH
	if v := s.editor.Viewport(); v != nil {
		v.Resize(availW, availH)
		s.display(Notice{Kind: NoticeViewportChanged})
		s.display(Notice{Kind: NoticeRedraw})
	}
}

// Handle passes an input event to the editor and then carries out the navigation or save the
// event requested. It returns the editor's error, or else the error of that follow-up action.
func (s *Session) Handle(ev Event) error {
	s.handlingEvent = true
	err := s.editor.Handle(ev)
	s.handlingEvent = false

	nav, save := s.pendingNav, s.pendingSave
	s.pendingNav, s.pendingSave = 0, false
	if err != nil {
		return err
	}
	if save {
		if err := s.Save(); err != nil {
			return err
		}
	}
	if nav != 0 {
		return s.Navigate(nav)
	}
	return nil
}

// onNotice receives the editor notices.
func (s *Session) onNotice(n Notice) {
	switch n.Kind {
	case NoticeNavigate:
		if s.handlingEvent {
			s.pendingNav += n.Index
		}
	case NoticeSave:
		if s.handlingEvent {
			s.pendingSave = true
		}
	}
	s.display(n)
}
