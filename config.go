package bboxlabel

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of all components. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	Viewport ViewportConfig `yaml:"viewport"`
	Export   ExportConfig   `yaml:"export"`
	Store    StoreConfig    `yaml:"store"`
}

// EditorConfig holds the interactive editing thresholds.
type EditorConfig struct {
	MinDrawSize     int     `yaml:"min_draw_size"`    // A drawn box must exceed this width and height (px).
	MinBoxSize      int     `yaml:"min_box_size"`     // Resizing never goes below this size (px).
	HandleTolerance float64 `yaml:"handle_tolerance"` // Handle hit distance in display pixels.
}

// ViewportConfig holds the zoom limits.
type ViewportConfig struct {
	MaxZoom      float64 `yaml:"max_zoom"`
	ZoomStep     float64 `yaml:"zoom_step"`
	FitTolerance float64 `yaml:"fit_tolerance"`
}

// ExportConfig holds the exporter settings.
type ExportConfig struct {
	YoloPrecision int  `yaml:"yolo_precision"` // Decimal places of YOLO label values.
	CopyImages    bool `yaml:"copy_images"`    // Copy the source images into the YOLO output.
	ImageMaxSide  int  `yaml:"image_max_side"` // Down-scale copied images to this longer side (0 keeps the size).
	JPEGQuality   int  `yaml:"jpeg_quality"`
	ThumbnailSize int  `yaml:"thumbnail_size"` // Side length of ROI preview thumbnails.
}

// StoreConfig holds the project store and image list settings.
type StoreConfig struct {
	DefaultProjectName string   `yaml:"default_project_name"`
	ImageExtensions    []string `yaml:"image_extensions"`
	AutoSave           bool     `yaml:"auto_save"` // Save the project when navigating between images.
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Editor: EditorConfig{
			MinDrawSize:     5,
			MinBoxSize:      10,
			HandleTolerance: 6,
		},
		Viewport: ViewportConfig{
			MaxZoom:      DefaultMaxZoom,
			ZoomStep:     DefaultZoomStep,
			FitTolerance: DefaultFitTolerance,
		},
		Export: ExportConfig{
			YoloPrecision: 6,
			JPEGQuality:   90,
			ThumbnailSize: 100,
		},
		Store: StoreConfig{
			DefaultProjectName: "Untitled Project",
			ImageExtensions:    []string{".jpg", ".jpeg", ".png", ".bmp"},
			AutoSave:           true,
		},
	}
}

// LoadConfig reads a YAML configuration file. Settings missing from the file keep their default
// values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	enc, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(enc, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that all settings are in range.
func (c Config) Validate() error {
	if c.Editor.MinDrawSize < 1 {
		return fmt.Errorf("editor.min_draw_size must be positive")
	}
	if c.Editor.MinBoxSize < 1 {
		return fmt.Errorf("editor.min_box_size must be positive")
	}
	if c.Editor.HandleTolerance <= 0 {
		return fmt.Errorf("editor.handle_tolerance must be positive")
	}
	if c.Viewport.MaxZoom <= 0 {
		return fmt.Errorf("viewport.max_zoom must be positive")
	}
	if c.Viewport.ZoomStep <= 0 {
		return fmt.Errorf("viewport.zoom_step must be positive")
	}
	if c.Viewport.FitTolerance <= 0 {
		return fmt.Errorf("viewport.fit_tolerance must be positive")
	}
	if c.Export.YoloPrecision < 1 || c.Export.YoloPrecision > 17 {
		return fmt.Errorf("export.yolo_precision must be between 1 and 17")
	}
	if c.Export.ImageMaxSide < 0 {
		return fmt.Errorf("export.image_max_side must not be negative")
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be between 1 and 100")
	}
	if c.Export.ThumbnailSize < 1 {
		return fmt.Errorf("export.thumbnail_size must be positive")
	}
	if len(c.Store.ImageExtensions) == 0 {
		return fmt.Errorf("store.image_extensions cannot be empty")
	}
	return nil
}
