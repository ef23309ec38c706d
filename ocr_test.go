package main

import (
	"image"
	"testing"
)

func TestPreprocessUpscalesSmallRegions(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 300, 80))

	out := PreprocessForOCR(small)
	if out == nil {
		t.Fatal("PreprocessForOCR returned nil")
	}
	if got := out.Bounds().Dx(); got != 600 {
		t.Errorf("width = %d, want 600 (2x upscale)", got)
	}
}

func TestPreprocessLeavesLargeRegions(t *testing.T) {
	large := image.NewRGBA(image.Rect(0, 0, 800, 200))

	out := PreprocessForOCR(large)
	if got := out.Bounds().Dx(); got != 800 {
		t.Errorf("width = %d, want unchanged 800", got)
	}
}

func TestPreprocessNil(t *testing.T) {
	if out := PreprocessForOCR(nil); out != nil {
		t.Error("nil input should yield nil output")
	}
}
