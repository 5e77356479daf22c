// Package config handles topsurf configuration loading and management.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/philipparndt/topsurf/pkg/analysis"
	"github.com/philipparndt/topsurf/pkg/geometry"
	"github.com/philipparndt/topsurf/pkg/segment"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings.
type Config struct {
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Selection    SelectionConfig    `yaml:"selection"`
	Transform    TransformConfig    `yaml:"transform"`
	Export       ExportConfig       `yaml:"export"`
	Logging      LoggingConfig      `yaml:"logging"`
	Watch        WatchConfig        `yaml:"watch"`
}

// SegmentationConfig holds the segmentation algorithm and its tuning.
type SegmentationConfig struct {
	Method                string  `yaml:"method"`
	AngleThreshold        float64 `yaml:"angle_threshold"`
	MinPts                int     `yaml:"min_pts"`
	MinClusterSize        int     `yaml:"min_cluster_size"`
	MinRegionSize         int     `yaml:"min_region_size"`
	FinalMinRegionSize    int     `yaml:"final_min_region_size"`
	RetryUnassignedRatio  float64 `yaml:"retry_unassigned_ratio"`
	RetryAngleMultiplier  float64 `yaml:"retry_angle_multiplier"`
	RetryMaxAngle         float64 `yaml:"retry_max_angle"`
	FallbackNeighborRatio float64 `yaml:"fallback_neighbor_ratio"`
	FallbackNormalAngle   float64 `yaml:"fallback_normal_angle"`
	ColorSeed             int64   `yaml:"color_seed"`
}

// SelectionConfig holds top surface selection settings.
type SelectionConfig struct {
	UpAxis          string  `yaml:"up_axis"`
	MinScore        float64 `yaml:"min_score"`
	HeightTolerance float64 `yaml:"height_tolerance"`
}

// TransformConfig rotates the model (degrees, X then Y then Z) before segmentation.
type TransformConfig struct {
	RotateX float32 `yaml:"rotate_x"`
	RotateY float32 `yaml:"rotate_y"`
	RotateZ float32 `yaml:"rotate_z"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Format string `yaml:"format"`
	Binary bool   `yaml:"binary"`
	Merge  bool   `yaml:"merge"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with the reference tuning.
func Default() *Config {
	seg := segment.DefaultOptions()
	sel := analysis.DefaultSelectOptions()
	return &Config{
		Segmentation: SegmentationConfig{
			Method:                string(segment.MethodRegion),
			AngleThreshold:        seg.AngleThreshold,
			MinPts:                seg.MinPts,
			MinClusterSize:        seg.MinClusterSize,
			MinRegionSize:         seg.MinRegionSize,
			FinalMinRegionSize:    seg.FinalMinRegionSize,
			RetryUnassignedRatio:  seg.RetryUnassignedRatio,
			RetryAngleMultiplier:  seg.RetryAngleMultiplier,
			RetryMaxAngle:         seg.RetryMaxAngle,
			FallbackNeighborRatio: seg.FallbackNeighborRatio,
			FallbackNormalAngle:   seg.FallbackNormalAngle,
		},
		Selection: SelectionConfig{
			UpAxis:          sel.UpAxis.String(),
			MinScore:        sel.MinScore,
			HeightTolerance: sel.HeightTolerance,
		},
		Export: ExportConfig{
			Format: "stl",
			Merge:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	s := c.Segmentation
	if _, err := segment.ParseMethod(s.Method); err != nil {
		return errors.Wrapf(ErrInvalid, "segmentation.method: %v", err)
	}
	if s.AngleThreshold <= 0 || s.AngleThreshold > 180 {
		return errors.Wrapf(ErrInvalid, "segmentation.angle_threshold must be in (0, 180], got %g", s.AngleThreshold)
	}
	if s.RetryMaxAngle <= 0 || s.FallbackNormalAngle <= 0 {
		return errors.Wrap(ErrInvalid, "segmentation angles must be positive")
	}
	if s.RetryAngleMultiplier < 1 {
		return errors.Wrapf(ErrInvalid, "segmentation.retry_angle_multiplier must be >= 1, got %g", s.RetryAngleMultiplier)
	}
	for name, ratio := range map[string]float64{
		"retry_unassigned_ratio":  s.RetryUnassignedRatio,
		"fallback_neighbor_ratio": s.FallbackNeighborRatio,
	} {
		if ratio < 0 || ratio > 1 {
			return errors.Wrapf(ErrInvalid, "segmentation.%s must be in [0, 1], got %g", name, ratio)
		}
	}
	if s.MinPts < 1 || s.MinClusterSize < 1 || s.MinRegionSize < 1 || s.FinalMinRegionSize < 1 {
		return errors.Wrap(ErrInvalid, "segmentation sizes must be at least 1")
	}

	if _, err := geometry.ParseAxis(c.Selection.UpAxis); err != nil {
		return errors.Wrapf(ErrInvalid, "selection.up_axis: %v", err)
	}
	if c.Selection.MinScore < -1 || c.Selection.MinScore > 1 {
		return errors.Wrapf(ErrInvalid, "selection.min_score must be in [-1, 1], got %g", c.Selection.MinScore)
	}
	if c.Selection.HeightTolerance < 0 {
		return errors.Wrap(ErrInvalid, "selection.height_tolerance must not be negative")
	}

	switch strings.ToLower(c.Export.Format) {
	case "stl", "obj":
	default:
		return errors.Wrapf(ErrInvalid, "export.format must be stl or obj, got %q", c.Export.Format)
	}
	if c.Watch.Debounce < 0 {
		return errors.Wrap(ErrInvalid, "watch.debounce must not be negative")
	}
	return nil
}

// Method returns the parsed segmentation method.
func (c *Config) Method() segment.Method {
	m, err := segment.ParseMethod(c.Segmentation.Method)
	if err != nil {
		return segment.MethodRegion
	}
	return m
}

// SegmentOptions converts the segmentation section into library options.
func (c *Config) SegmentOptions() segment.Options {
	s := c.Segmentation
	return segment.Options{
		AngleThreshold:        s.AngleThreshold,
		MinPts:                s.MinPts,
		MinClusterSize:        s.MinClusterSize,
		MinRegionSize:         s.MinRegionSize,
		FinalMinRegionSize:    s.FinalMinRegionSize,
		RetryUnassignedRatio:  s.RetryUnassignedRatio,
		RetryAngleMultiplier:  s.RetryAngleMultiplier,
		RetryMaxAngle:         s.RetryMaxAngle,
		FallbackNeighborRatio: s.FallbackNeighborRatio,
		FallbackNormalAngle:   s.FallbackNormalAngle,
		ColorSeed:             s.ColorSeed,
	}
}

// SelectOptions converts the selection section into library options.
func (c *Config) SelectOptions() analysis.SelectOptions {
	axis, _ := geometry.ParseAxis(c.Selection.UpAxis)
	return analysis.SelectOptions{
		UpAxis:          axis,
		MinScore:        c.Selection.MinScore,
		HeightTolerance: c.Selection.HeightTolerance,
	}
}

// HasRotation reports whether the transform section rotates the model.
func (c *Config) HasRotation() bool {
	t := c.Transform
	return t.RotateX != 0 || t.RotateY != 0 || t.RotateZ != 0
}
