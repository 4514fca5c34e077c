package desktop

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
	"github.com/otiai10/gosseract/v2"
)

// RobotGo is the production IO, backed by robotgo for screen capture and
// synthetic input, gosseract (Tesseract bindings) for OCR, and
// atotto/clipboard for clipboard access — the same ecosystem split the
// source's single automation library made internally. kbinani/screenshot
// backs a region-capture fallback for platforms/sessions where robotgo's
// bitmap conversion comes back empty (headless displays, some remote
// desktop sessions).
type RobotGo struct{}

// NewRobotGo constructs the production DesktopIO.
func NewRobotGo() *RobotGo { return &RobotGo{} }

func (RobotGo) Screenshot(r Rect) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("screenshot region has zero width or height")
	}
	if img, err := captureRobotGo(r); err == nil {
		return img, nil
	}
	return captureFallback(r)
}

// captureRobotGo wraps robotgo's capture path, which panics rather than
// returning an error on some headless X11 setups.
func captureRobotGo(r Rect) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("robotgo capture panicked: %v", p)
		}
	}()
	bmp := robotgo.CaptureScreen(r.X, r.Y, r.Width, r.Height)
	if bmp == nil {
		return nil, fmt.Errorf("robotgo returned a nil bitmap")
	}
	defer robotgo.FreeBitmap(bmp)
	converted := robotgo.ToImage(bmp)
	if converted == nil || converted.Bounds().Dx() == 0 {
		return nil, fmt.Errorf("robotgo bitmap conversion produced an empty image")
	}
	return converted, nil
}

// captureFallback uses kbinani/screenshot, which calls the
// platform's native capture API directly rather than robotgo's CGO bitmap
// path, for the region robotgo failed to capture.
func captureFallback(r Rect) (image.Image, error) {
	bounds := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("fallback screen capture failed: %w", err)
	}
	return img, nil
}

func (RobotGo) OCR(img image.Image) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	encoded, err := encodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encoding captured image: %w", err)
	}
	if err := client.SetImageFromBytes(encoded); err != nil {
		return "", fmt.Errorf("loading image into OCR engine: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running OCR: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (RobotGo) ReadClipboard() (string, error) {
	return clipboard.ReadAll()
}

func (RobotGo) WriteClipboard(s string) error {
	return clipboard.WriteAll(s)
}

func (RobotGo) Click(x, y int) error {
	robotgo.Move(x, y)
	robotgo.Click()
	return nil
}

func (RobotGo) TypeText(s string, perCharDelay int) error {
	for _, r := range s {
		robotgo.TypeStr(string(r))
		if perCharDelay > 0 {
			time.Sleep(time.Duration(perCharDelay) * time.Millisecond)
		}
	}
	return nil
}

func (RobotGo) KeyCombo(seq string) error {
	parts := strings.Split(seq, "+")
	if len(parts) == 1 {
		return robotgo.KeyTap(parts[0])
	}
	keys := make([]any, 0, len(parts)-1)
	for _, k := range parts[1:] {
		keys = append(keys, k)
	}
	return robotgo.KeyTap(parts[0], keys...)
}

func (RobotGo) ReleaseModifiers() error {
	for _, k := range []string{"ctrl", "alt", "shift"} {
		robotgo.KeyToggle(k, "up")
	}
	return nil
}

func (RobotGo) ActiveWindowTitle() (string, error) {
	defer func() { recover() }()
	return robotgo.GetTitle(), nil
}

func (RobotGo) CursorPosition() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
