// Package main - template.go
//
// This file implements optional template anchoring with OpenCV (gocv).
//
// Fixed OCR regions break as soon as the player drags a dialogue window.
// When anchoring is enabled, each detection cycle first locates the dialogue
// frame's corner ornament (a small PNG template under templates/) in the full
// frame via normalized cross-correlation, and OCRs relative to the hit
// instead of the configured fixed region. A miss falls back to the fixed
// region, so the feature degrades to the plain pipeline.
//
// Templates are loaded once at startup and the Mats are reused; Close must
// be called on shutdown to release the native memory.
package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// AnchorTemplate is the template name detector.go looks for by default.
const AnchorTemplate = "dialogue_frame"

// TemplateAnchor locates known UI elements in captured frames.
type TemplateAnchor struct {
	threshold float32
	templates map[string]gocv.Mat
}

// NewTemplateAnchor loads every PNG under dir as a named template
// (file basename without extension). Returns an error only when the
// directory cannot be read; unloadable files are logged and skipped.
func NewTemplateAnchor(dir string, threshold float32) (*TemplateAnchor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory %s: %w", dir, err)
	}

	anchor := &TemplateAnchor{
		threshold: threshold,
		templates: make(map[string]gocv.Mat),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".png") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		mat := gocv.IMRead(path, gocv.IMReadColor)
		if mat.Empty() {
			LogWarn("Failed to load template %s, skipping", path)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		anchor.templates[name] = mat
		LogInfo("Loaded template %q (%dx%d)", name, mat.Cols(), mat.Rows())
	}

	if len(anchor.templates) == 0 {
		anchor.Close()
		return nil, fmt.Errorf("no usable templates in %s", dir)
	}
	return anchor, nil
}

// Has reports whether a template with the given name was loaded.
func (a *TemplateAnchor) Has(name string) bool {
	_, ok := a.templates[name]
	return ok
}

// Locate searches frame for the named template. Returns the matched
// rectangle in frame coordinates and whether the best correlation score
// met the threshold.
func (a *TemplateAnchor) Locate(frame image.Image, name string) (image.Rectangle, bool) {
	tmpl, ok := a.templates[name]
	if !ok {
		return image.Rectangle{}, false
	}

	src, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		LogError("Failed to convert frame for template matching: %v", err)
		return image.Rectangle{}, false
	}
	defer src.Close()

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, tmpl, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	if maxVal < a.threshold {
		LogDebug("Template %q best score %.3f below threshold %.3f", name, maxVal, a.threshold)
		return image.Rectangle{}, false
	}

	rect := image.Rect(maxLoc.X, maxLoc.Y, maxLoc.X+tmpl.Cols(), maxLoc.Y+tmpl.Rows())
	LogDebug("Template %q matched at %v (score %.3f)", name, rect, maxVal)
	return rect, true
}

// Close releases all template Mats.
func (a *TemplateAnchor) Close() {
	for name, mat := range a.templates {
		mat.Close()
		delete(a.templates, name)
	}
}
