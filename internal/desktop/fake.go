package desktop

import (
	"image"
	"sync"
)

// Fake is a recording, fully scriptable IO for tests: callers preload OCR
// text and clipboard contents, then assert on the sequence of calls made.
type Fake struct {
	mu sync.Mutex

	OCRText       string
	OCRErr        error
	ClipboardText string
	WindowTitle   string
	CursorX       int
	CursorY       int
	CursorErr     error

	Clicks  []ClickCall
	Typed   []string
	Combos  []string
	Shots   []Rect

	ModifiersReleased int
}

// ClickCall records one Click invocation.
type ClickCall struct{ X, Y int }

// NewFake returns a Fake with an empty script.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) Screenshot(r Rect) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Shots = append(f.Shots, r)
	if r.Width <= 0 || r.Height <= 0 {
		return nil, nil
	}
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

func (f *Fake) OCR(image.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.OCRText, f.OCRErr
}

func (f *Fake) ReadClipboard() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ClipboardText, nil
}

func (f *Fake) WriteClipboard(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClipboardText = s
	return nil
}

func (f *Fake) Click(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Clicks = append(f.Clicks, ClickCall{X: x, Y: y})
	return nil
}

func (f *Fake) TypeText(s string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Typed = append(f.Typed, s)
	return nil
}

func (f *Fake) KeyCombo(seq string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Combos = append(f.Combos, seq)
	return nil
}

func (f *Fake) ReleaseModifiers() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ModifiersReleased++
	return nil
}

func (f *Fake) ActiveWindowTitle() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.WindowTitle, nil
}

func (f *Fake) CursorPosition() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CursorX, f.CursorY, f.CursorErr
}
