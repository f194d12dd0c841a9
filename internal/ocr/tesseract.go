// Package ocr provides character recognition for rank glyphs using Tesseract.
package ocr

import (
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// RankChars is the whitelist for rank reads. "1" and "0" cover a printed 10.
const RankChars = "23456789TJQKA10"

// Engine wraps a single Tesseract client. Tesseract is not reentrant, so
// calls are serialized; an Engine is safe for use from multiple goroutines.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Card indices are single glyphs, not words
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	return &Engine{client: client}, nil
}

var (
	sharedOnce sync.Once
	shared     *Engine
	sharedErr  error
)

// Shared returns the process-wide engine, creating it on first use.
func Shared() (*Engine, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = NewEngine()
		if sharedErr == nil {
			log.Printf("OCR engine ready (tesseract %s)", gosseract.Version())
		}
	})
	return shared, sharedErr
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}

// ReadText recognizes a single word in img (gray or BGR) restricted to
// allowlist. It returns the concatenated text and the mean word confidence
// in [0,1].
func (e *Engine) ReadText(img gocv.Mat, allowlist string) (string, float64, error) {
	if img.Empty() {
		return "", 0, fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return "", 0, fmt.Errorf("engine closed")
	}

	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_WORD); err != nil {
		return "", 0, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(allowlist); err != nil {
		return "", 0, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get boxes: %w", err)
	}

	var words []string
	var sum float64
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, text)
		sum += box.Confidence
	}
	if len(words) == 0 {
		return "", 0, nil
	}
	conf := sum / float64(len(words)) / 100
	return strings.Join(words, ""), min(1, max(0, conf)), nil
}

// Warmup runs one recognition on a blank glyph-sized image so that the
// first real read does not pay Tesseract's initialization cost.
func (e *Engine) Warmup() error {
	blank := gocv.NewMatWithSizeWithScalar(64, 64, gocv.MatTypeCV8U, gocv.NewScalar(255, 0, 0, 0))
	defer blank.Close()
	gocv.Rectangle(&blank, image.Rect(24, 12, 40, 52), blackInk, -1)
	_, _, err := e.ReadText(blank, RankChars)
	return err
}
