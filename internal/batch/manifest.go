package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one rendered image in the output manifest.
type ManifestEntry struct {
	Source string `json:"source"`
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Manifest is written as manifest.json next to the outputs.
type Manifest struct {
	Opacity         int             `json:"opacity"`
	Angle           int             `json:"angle"`
	DepthAngle      int             `json:"depth_angle"`
	DiffusionFactor int             `json:"diffusion"`
	KeepOriginal    bool            `json:"keep_original"`
	Images          []ManifestEntry `json:"images"`
}

// WriteManifest writes the successful results to path. Image paths are
// relative to the manifest's directory when possible.
func WriteManifest(path string, cfg Config, results []Result) error {
	m := Manifest{
		Opacity:         cfg.Shadow.Opacity,
		Angle:           cfg.Shadow.Angle,
		DepthAngle:      cfg.Shadow.DepthAngle,
		DiffusionFactor: cfg.Shadow.DiffusionFactor,
		KeepOriginal:    cfg.Shadow.KeepOriginalImage,
		Images:          []ManifestEntry{},
	}
	dir := filepath.Dir(path)
	for _, r := range results {
		if !r.Success {
			continue
		}
		img := r.Output
		if rel, err := filepath.Rel(dir, r.Output); err == nil {
			img = filepath.ToSlash(rel)
		}
		m.Images = append(m.Images, ManifestEntry{
			Source: filepath.Base(r.Input),
			Image:  img,
			Width:  r.Width,
			Height: r.Height,
		})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
