package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	rasterScale   = 2
	rasterTimeout = 30 * time.Second
)

// Rasterizer turns an SVG document into PNG bytes
type Rasterizer interface {
	PNG(ctx context.Context, svg []byte) ([]byte, error)
}

// ChromeRasterizer screenshots SVG documents in headless Chrome
type ChromeRasterizer struct {
	chromePath string
	logger     *zap.Logger
}

// Ensure ChromeRasterizer implements Rasterizer
var _ Rasterizer = (*ChromeRasterizer)(nil)

// NewChromeRasterizer creates a new ChromeRasterizer. chromePath may be empty.
func NewChromeRasterizer(chromePath string, logger *zap.Logger) *ChromeRasterizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRasterizer{chromePath: detectChromePath(chromePath), logger: logger}
}

// chromeBinaries are looked up on PATH when CHROME_PATH is unset or missing
var chromeBinaries = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"}

// detectChromePath prefers the configured binary, then the first browser on
// PATH. An empty result lets chromedp fall back to its own search.
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	for _, name := range chromeBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// PNG renders the SVG at twice its canvas size
func (r *ChromeRasterizer) PNG(ctx context.Context, svg []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, rasterTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	start := time.Now()
	dataURL := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(canvasSize, canvasSize, chromedp.EmulateScale(rasterScale)),
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("svg"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize preview: %w", err)
	}

	r.logger.Info("📸 Preview rasterized", zap.Int("bytes", len(buf)), zap.Duration("took", time.Since(start)))
	return buf, nil
}
