package service

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"apparel-designer/models"
)

const (
	canvasSize        = 300
	outlineColor      = "#333"
	whiteProduct      = "#FFFFFF"
	whiteBackground   = "#F8F9FA"
	placeholderFill   = "#E9ECEF"
	placeholderText   = "#6C757D"
	overlayFontFamily = "Montserrat, sans-serif"
	teamFontSize      = 14
	userNameFontSize  = 16
)

type imageBox struct {
	x, y, width, height float64
}

// productTemplate is the fixed vector layout of one product type
type productTemplate struct {
	shapes       []models.Shape
	teamY        float64
	showUserName bool
	image        imageBox
}

func filledPath(d string) models.Shape {
	return models.Shape{Kind: "path", D: d, Filled: true}
}

var productTemplates = map[models.ProductType]productTemplate{
	models.ProductTShirt: {
		shapes: []models.Shape{
			filledPath("M75,50 L125,20 L175,20 L225,50 L225,250 L75,250 Z"),
			filledPath("M125,20 L175,20 L175,70 L125,70 Z"),
			filledPath("M75,50 L45,70 L60,100 L75,90 Z"),
			filledPath("M225,50 L255,70 L240,100 L225,90 Z"),
		},
		teamY:        100,
		showUserName: true,
		image:        imageBox{115, 120, 70, 70},
	},
	models.ProductHoodie: {
		shapes: []models.Shape{
			filledPath("M75,70 L125,40 L175,40 L225,70 L225,250 L75,250 Z"),
			filledPath("M125,40 L175,40 L175,70 L125,70 Z"),
			filledPath("M75,70 L45,90 L60,120 L75,110 Z"),
			filledPath("M225,70 L255,90 L240,120 L225,110 Z"),
			filledPath("M125,40 L100,10 L150,0 L200,10 L175,40"),
		},
		teamY:        100,
		showUserName: true,
		image:        imageBox{115, 120, 70, 70},
	},
	models.ProductCap: {
		shapes: []models.Shape{
			filledPath("M100,130 C100,80 200,80 200,130 L220,130 L220,150 L80,150 L80,130 Z"),
			{Kind: "path", D: "M100,130 C100,100 200,100 200,130"},
			{Kind: "path", D: "M150,130 L150,150", DashArray: "2,2"},
		},
		teamY:        130,
		showUserName: false,
		image:        imageBox{125, 105, 50, 30},
	},
	models.ProductJacket: {
		shapes: []models.Shape{
			filledPath("M75,60 L125,30 L175,30 L225,60 L225,250 L75,250 Z"),
			filledPath("M125,30 L175,30 L175,60 L150,80 L125,60 Z"),
			filledPath("M75,60 L45,80 L60,110 L75,100 Z"),
			filledPath("M225,60 L255,80 L240,110 L225,100 Z"),
			{Kind: "line", X1: 150, Y1: 80, X2: 150, Y2: 250, DashArray: "5,5"},
		},
		teamY:        100,
		showUserName: true,
		image:        imageBox{115, 120, 70, 70},
	},
}

// RenderInput is everything the preview depends on
type RenderInput struct {
	ProductType models.ProductType
	Color       string
	TextColor   string
	TeamName    string
	UserName    string
	Image       string
}

// RenderService turns a selection into a vector preview.
// It holds no state; every call recomputes the scene.
type RenderService struct{}

// NewRenderService creates a new RenderService
func NewRenderService() *RenderService {
	return &RenderService{}
}

// Scene maps the input to the product template with its text and image overlays
func (r *RenderService) Scene(in RenderInput) models.Scene {
	tpl, ok := productTemplates[in.ProductType]
	if !ok {
		in.ProductType = models.ProductTShirt
		tpl = productTemplates[models.ProductTShirt]
	}

	scene := models.Scene{
		ProductType: in.ProductType,
		Background:  backgroundFor(in.Color),
		Fill:        in.Color,
		Shapes:      tpl.shapes,
	}
	if in.TeamName != "" {
		scene.Team = &models.TextOverlay{
			X: canvasSize / 2, Y: tpl.teamY,
			FontSize: teamFontSize,
			Fill:     in.TextColor,
			Content:  in.TeamName,
		}
	}
	if in.UserName != "" && tpl.showUserName {
		scene.UserName = &models.TextOverlay{
			X: canvasSize / 2, Y: 220,
			FontSize: userNameFontSize,
			Fill:     in.TextColor,
			Content:  in.UserName,
		}
	}
	if in.Image != "" {
		scene.Image = &models.ImageOverlay{
			X: tpl.image.x, Y: tpl.image.y,
			Width: tpl.image.width, Height: tpl.image.height,
			Href: in.Image,
		}
	}
	return scene
}

// Placeholder is the scene shown while the preview is "loading"
func (r *RenderService) Placeholder(pt models.ProductType) models.Scene {
	return models.Scene{ProductType: pt, Background: placeholderFill, Loading: true}
}

// SVG serializes a scene
func (r *RenderService) SVG(scene models.Scene) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" aria-label="%s visualization">`+"\n",
		canvasSize, canvasSize, canvasSize, canvasSize, html.EscapeString(string(scene.ProductType)))
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", canvasSize, canvasSize, attr(scene.Background))

	if scene.Loading {
		writeText(&buf, models.TextOverlay{X: canvasSize / 2, Y: canvasSize / 2, FontSize: 14, Fill: placeholderText, Content: "Loading preview..."}, false)
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	buf.WriteString("  <g>\n")
	for _, shape := range scene.Shapes {
		writeShape(&buf, shape, scene.Fill)
	}
	buf.WriteString("  </g>\n")

	if scene.Team != nil {
		writeText(&buf, *scene.Team, true)
	}
	if scene.UserName != nil {
		writeText(&buf, *scene.UserName, true)
	}
	if img := scene.Image; img != nil {
		fmt.Fprintf(&buf, `  <image x="%s" y="%s" width="%s" height="%s" href="%s" preserveAspectRatio="xMidYMid meet"/>`+"\n",
			num(img.X), num(img.Y), num(img.Width), num(img.Height), attr(img.Href))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderSVG is Scene followed by SVG
func (r *RenderService) RenderSVG(in RenderInput) []byte {
	return r.SVG(r.Scene(in))
}

func writeShape(buf *bytes.Buffer, shape models.Shape, color string) {
	fill := "none"
	if shape.Filled {
		fill = attr(color)
	}
	dash := ""
	if shape.DashArray != "" {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, shape.DashArray)
	}
	switch shape.Kind {
	case "line":
		fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"%s stroke-width="1"/>`+"\n",
			num(shape.X1), num(shape.Y1), num(shape.X2), num(shape.Y2), outlineColor, dash)
	default:
		fmt.Fprintf(buf, `    <path d="%s" fill="%s" stroke="%s"%s stroke-width="1"/>`+"\n",
			shape.D, fill, outlineColor, dash)
	}
}

func writeText(buf *bytes.Buffer, t models.TextOverlay, bold bool) {
	weight := ""
	if bold {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(buf, `  <text x="%s" y="%s" font-size="%d" text-anchor="middle" fill="%s" font-family="%s"%s>%s</text>`+"\n",
		num(t.X), num(t.Y), t.FontSize, attr(t.Fill), overlayFontFamily, weight, html.EscapeString(t.Content))
}

// backgroundFor keeps white products visible against a white page
func backgroundFor(color string) string {
	if color == whiteProduct {
		return whiteBackground
	}
	return color
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func attr(s string) string {
	return html.EscapeString(s)
}
