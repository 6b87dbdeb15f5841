package service

import (
	"context"
	"time"

	"apparel-designer/models"
)

// PreviewService renders the preview of a selection
type PreviewService struct {
	designer     *SelectionService
	renderer     *RenderService
	raster       Rasterizer
	exporter     *ExportService
	loadingDelay time.Duration
}

// NewPreviewService creates a new PreviewService
func NewPreviewService(designer *SelectionService, renderer *RenderService, raster Rasterizer, exporter *ExportService, loadingDelay time.Duration) *PreviewService {
	return &PreviewService{
		designer:     designer,
		renderer:     renderer,
		raster:       raster,
		exporter:     exporter,
		loadingDelay: loadingDelay,
	}
}

// Input maps a selection to what the renderer draws
func (p *PreviewService) Input(sel models.Selection) RenderInput {
	return RenderInput{
		ProductType: sel.ProductType,
		Color:       sel.Color,
		TextColor:   sel.TextColor,
		TeamName:    p.designer.TeamName(sel),
		UserName:    sel.UserName,
		Image:       sel.CustomImage,
	}
}

// Scene is the placeholder inside the loading window, the full scene otherwise
func (p *PreviewService) Scene(sel models.Selection) models.Scene {
	if p.designer.Loading(sel, p.loadingDelay) {
		return p.renderer.Placeholder(sel.ProductType)
	}
	return p.renderer.Scene(p.Input(sel))
}

// Preview returns the SVG currently shown for the selection
func (p *PreviewService) Preview(sel models.Selection) models.PreviewResponse {
	scene := p.Scene(sel)
	return models.PreviewResponse{
		Loading: scene.Loading,
		SVG:     string(p.renderer.SVG(scene)),
		Summary: p.designer.Summary(sel),
	}
}

// SVG returns the preview document
func (p *PreviewService) SVG(sel models.Selection) []byte {
	return p.renderer.SVG(p.Scene(sel))
}

// PNG rasterizes the full scene, ignoring the loading window
func (p *PreviewService) PNG(ctx context.Context, sel models.Selection) ([]byte, error) {
	return p.raster.PNG(ctx, p.renderer.RenderSVG(p.Input(sel)))
}

// Export uploads the full scene as "<summary>.png"
func (p *PreviewService) Export(ctx context.Context, sel models.Selection) (models.ExportResponse, error) {
	if p.exporter == nil {
		return models.ExportResponse{}, ErrExportDisabled
	}
	return p.exporter.Export(ctx, p.designer.Summary(sel), p.renderer.RenderSVG(p.Input(sel)))
}
