package bboxlabel

// Project loading and saving.

import (
	"fmt"
	"io/ioutil"
	"time"
)

// Store loads and saves projects in the project JSON format. The in-memory project it hands out is
// never nil: load failures are recovered with a fresh default project.
type Store struct {
	cfg    StoreConfig
	logger Logger
	now    func() time.Time
}

// NewStore creates a store. A nil logger discards all messages.
func NewStore(cfg StoreConfig, logger Logger) *Store {
	if cfg.DefaultProjectName == "" {
		cfg.DefaultProjectName = DefaultConfig().Store.DefaultProjectName
	}
	return &Store{cfg: cfg, logger: loggerOrDiscard(logger), now: time.Now}
}

// CreateDefault returns a new empty project with the configured default name.
func (s *Store) CreateDefault() *Project {
	return NewProject(s.cfg.DefaultProjectName, s.now())
}

// Load reads the project at path.
//
// Load always returns a usable project. If the file is missing, unreadable or does not contain a
// valid project, a default project is returned together with a warning that wraps
// ErrProjectLoadFailed; the warning is also logged. A successfully parsed project is returned as
// stored, with a nil warning.
func (s *Store) Load(path string) (p *Project, warning error) {
	enc, err := ioutil.ReadFile(path)
	if err == nil {
		p, err = ImportProjectJSON(enc)
	}
	if err != nil {
		warning = fmt.Errorf("%w: %q: %w", ErrProjectLoadFailed, path, err)
		s.logger.Printf("Warning: %v; starting with an empty project", warning)
		return s.CreateDefault(), warning
	}

	s.logger.Printf("Loaded project %q with %d classes and %d images from %s",
		p.Name, len(p.Classes), len(p.Annotations), path)
	return p, nil
}

// Save writes the project to path, replacing any existing file atomically. It sets the project's
// last-modified time and points its path at path, so later saves go to the same file. On failure
// the project is left as it was and the returned error wraps ErrProjectSaveFailed.
func (s *Store) Save(p *Project, path string) error {
	prevModified, prevPath := p.LastModified, p.Path
	p.LastModified = s.now()
	p.Path = path

	err := func() error {
		enc, err := ExportProjectJSON(p)
		if err != nil {
			return err
		}
		return writeFileAtomic(path, enc, 0644)
	}()
	if err != nil {
		p.LastModified, p.Path = prevModified, prevPath
		return fmt.Errorf("%w: cannot write %q: %w", ErrProjectSaveFailed, path, err)
	}

	s.logger.Printf("Saved project %q to %s", p.Name, path)
	return nil
}

// GetOrCreateAnnotation returns the annotation for imagePath in p, creating an empty one with the
// given size on first visit.
func (s *Store) GetOrCreateAnnotation(p *Project, imagePath string, width, height int) *ImageAnnotation {
	return p.GetOrCreateAnnotation(imagePath, width, height, s.now())
}
