package bboxlabel

import "errors"

// Error kinds reported by the package. Callers match them with errors.Is; the returned errors wrap
// them together with the offending path or value.
var (
	// ErrInvalidGeometry is returned for zero or negative image dimensions.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrNoClassSelected is returned when a box is drawn without an active class.
	ErrNoClassSelected = errors.New("no class selected")
	// ErrProjectLoadFailed wraps the cause of a recovered project load failure.
	ErrProjectLoadFailed = errors.New("project load failed")
	// ErrProjectSaveFailed wraps the cause of a failed project save.
	ErrProjectSaveFailed = errors.New("project save failed")
	// ErrExportFailed wraps the cause of a failed export.
	ErrExportFailed = errors.New("export failed")
	// ErrDuplicateClassName is returned when a class name is already in the class list.
	ErrDuplicateClassName = errors.New("duplicate class name")
	// ErrInvalidClassID is returned when a box references a class id outside the class list.
	ErrInvalidClassID = errors.New("invalid class id")
	// ErrUnknownClass is returned when a box's class name is not in the class list.
	ErrUnknownClass = errors.New("unknown class")
	// ErrInvalidProject is returned for project content that does not form a valid project.
	ErrInvalidProject = errors.New("invalid project")
)
