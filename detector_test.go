package main

import (
	"errors"
	"image"
	"testing"
	"time"
)

// fakeCapturer returns a fixed image for every region.
type fakeCapturer struct {
	err error
}

func (f *fakeCapturer) CaptureRegion(rect image.Rectangle) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(rect), nil
}

func (f *fakeCapturer) Bounds() image.Rectangle {
	return image.Rect(0, 0, 1024, 768)
}

// fakeReader returns canned text instead of running Tesseract.
type fakeReader struct {
	text  string
	err   error
	calls int
}

func (f *fakeReader) ReadText(img image.Image) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestDetector(text string) (*DialogueDetector, *fakeReader) {
	reader := &fakeReader{text: text}
	registry := NewDefaultRegistry(1.0)
	detector := NewDialogueDetector(&fakeCapturer{}, reader, registry, Region{X: 250, Y: 120, W: 520, H: 360})
	return detector, reader
}

func TestDetectClassifiesRegisteredState(t *testing.T) {
	text := "New Quest: Wolf Cull\nWill you accept?\n1. Accept\n2. Decline"
	detector, _ := newTestDetector(text)

	rec, err := detector.Detect()
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("Detect returned nil record for matching text")
	}
	if rec.State != StateQuestOffer {
		t.Errorf("State = %q, want %q", rec.State, StateQuestOffer)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", rec.Confidence)
	}
	if len(rec.Options) != 2 {
		t.Fatalf("got %d options, want 2", len(rec.Options))
	}
	if rec.Options[0].Number != 1 || rec.Options[0].Text != "Accept" {
		t.Errorf("option[0] = %+v, want {1 Accept}", rec.Options[0])
	}
	if rec.Options[1].Number != 2 || rec.Options[1].Text != "Decline" {
		t.Errorf("option[1] = %+v, want {2 Decline}", rec.Options[1])
	}
}

func TestDetectUnmatchedTextKeepsRawText(t *testing.T) {
	text := "Wolf 57%"
	detector, _ := newTestDetector(text)

	rec, err := detector.Detect()
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("Detect returned nil record for non-empty text")
	}
	if rec.State != "" {
		t.Errorf("State = %q, want empty for unmatched text", rec.State)
	}
	if rec.Text != text {
		t.Errorf("Text = %q, want %q", rec.Text, text)
	}
}

func TestDetectEmptyTextReturnsNil(t *testing.T) {
	detector, _ := newTestDetector("")

	rec, err := detector.Detect()
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if rec != nil {
		t.Errorf("Detect = %+v, want nil for empty text", rec)
	}
}

func TestDetectPropagatesCaptureError(t *testing.T) {
	reader := &fakeReader{text: "irrelevant"}
	registry := NewDefaultRegistry(1.0)
	capturer := &fakeCapturer{err: errors.New("display gone")}
	detector := NewDialogueDetector(capturer, reader, registry, Region{W: 100, H: 100})

	if _, err := detector.Detect(); err == nil {
		t.Error("Detect should return the capture error")
	}
	if reader.calls != 0 {
		t.Errorf("OCR ran %d times despite capture failure", reader.calls)
	}
}

// A state that stays on screen across iterations dispatches its handler
// exactly once until the dialogue disappears.
func TestDetectAndDispatchExactlyOnce(t *testing.T) {
	text := "New Quest: Wolf Cull\nWill you accept?\n1. Accept\n2. Decline"
	detector, reader := newTestDetector(text)

	dispatcher := NewActionDispatcher(time.Minute)
	calls := 0
	dispatcher.Register(StateQuestOffer, func(rec *DetectedDialogue) error {
		calls++
		return nil
	})

	for i := 0; i < 3; i++ {
		rec, err := detector.Detect()
		if err != nil {
			t.Fatalf("Detect iteration %d: %v", i, err)
		}
		if _, err := dispatcher.Dispatch(rec); err != nil {
			t.Fatalf("Dispatch iteration %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("handler ran %d times for a persistent dialogue, want 1", calls)
	}

	// Dialogue disappears, then reappears: fresh dispatch.
	reader.text = ""
	rec, _ := detector.Detect()
	if rec != nil {
		t.Fatalf("expected nil record for empty screen, got %+v", rec)
	}
	dispatcher.ClearLast()

	reader.text = text
	rec, _ = detector.Detect()
	if _, err := dispatcher.Dispatch(rec); err != nil {
		t.Fatalf("Dispatch after reappearance: %v", err)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times after reappearance, want 2", calls)
	}
}

func TestDetectUnregisteredStateNoHandlerCall(t *testing.T) {
	detector, _ := newTestDetector("some scenery text with no prompts")

	dispatcher := NewActionDispatcher(time.Minute)
	calls := 0
	for _, state := range []string{StateQuestOffer, StateVendorScreen, StateLootWindow} {
		dispatcher.Register(state, func(rec *DetectedDialogue) error {
			calls++
			return nil
		})
	}

	rec, err := detector.Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	dispatched, err := dispatcher.Dispatch(rec)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if dispatched {
		t.Error("Dispatch reported true for unmatched text")
	}
	if calls != 0 {
		t.Errorf("%d handlers ran for unmatched text, want 0", calls)
	}
}

func TestExtractOptions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []DialogueOption
	}{
		{
			name: "dot and paren separators",
			text: "Greetings traveler.\n1. Tell me more\n2) No thanks",
			want: []DialogueOption{{1, "Tell me more"}, {2, "No thanks"}},
		},
		{
			name: "bracket separator with leading spaces",
			text: "  3] Open the gate",
			want: []DialogueOption{{3, "Open the gate"}},
		},
		{
			name: "no numbered lines",
			text: "You have died.\nRelease spirit?",
			want: nil,
		},
		{
			name: "implausible option numbers skipped",
			text: "99) not an option\n1. Accept",
			want: []DialogueOption{{1, "Accept"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractOptions(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d options %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("option[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadRegion(t *testing.T) {
	detector, reader := newTestDetector("HP 43%")

	text, err := detector.ReadRegion(Region{X: 10, Y: 10, W: 280, H: 60})
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if text != "HP 43%" {
		t.Errorf("ReadRegion = %q, want %q", text, "HP 43%")
	}
	if reader.calls != 1 {
		t.Errorf("OCR ran %d times, want 1", reader.calls)
	}
}
