package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apparel-designer/config"
	"apparel-designer/models"
	"apparel-designer/repository"
	"apparel-designer/service"
)

type renderOpts struct {
	product   string
	color     string
	textColor string
	sport     string
	league    string
	team      string
	name      string
	image     string
	output    string
	format    string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one design to SVG or PNG",
		Example: `  apparel render --product hoodie --color "#0A2342" --text-color "#FFD700" \
    --sport soccer --league mls --team galaxy --name ALEX -o hoodie.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.product, "product", "", "product type (t-shirt, hoodie, cap, jacket)")
	f.StringVar(&opts.color, "color", "", "product color hex")
	f.StringVar(&opts.textColor, "text-color", "", "text color hex")
	f.StringVar(&opts.sport, "sport", "", "sport id")
	f.StringVar(&opts.league, "league", "", "league id (defaults to the sport's first league)")
	f.StringVar(&opts.team, "team", "", "team id (defaults to the league's first team)")
	f.StringVar(&opts.name, "name", "", "personalization name")
	f.StringVar(&opts.image, "image", "", "custom image file")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&opts.format, "format", "", "svg or png (default: from --output extension, else svg)")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	catalog, err := repository.NewCatalogRepository()
	if err != nil {
		return err
	}
	designer := service.NewSelectionService(catalog, nil)

	sel, err := applyRenderOpts(designer, designer.Default(), opts)
	if err != nil {
		return err
	}
	if opts.image != "" {
		data, err := os.ReadFile(opts.image)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		dataURI, err := service.NewImageService(logger).EncodeUpload(data)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.image, err)
		}
		sel = designer.SetImage(sel, dataURI)
	}

	format, err := renderFormat(opts)
	if err != nil {
		return err
	}
	var raster service.Rasterizer
	if format == "png" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		raster = service.NewChromeRasterizer(cfg.Render.ChromePath, logger)
	}
	previews := service.NewPreviewService(designer, service.NewRenderService(), raster, nil, 0)

	var out []byte
	if format == "png" {
		if out, err = previews.PNG(cmd.Context(), sel); err != nil {
			return err
		}
	} else {
		out = previews.SVG(sel)
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("✓ Design rendered", zap.String("summary", designer.Summary(sel)), zap.String("output", opts.output))
	return nil
}

func applyRenderOpts(designer *service.SelectionService, sel models.Selection, opts renderOpts) (models.Selection, error) {
	steps := []struct {
		value string
		set   func(models.Selection, string) (models.Selection, error)
	}{
		{opts.product, designer.SetProductType},
		{opts.color, designer.SetColor},
		{opts.textColor, designer.SetTextColor},
		{opts.sport, designer.SetSport},
		{opts.league, designer.SetLeague},
		{opts.team, designer.SetTeam},
		{opts.name, designer.SetUserName},
	}
	for _, step := range steps {
		if step.value == "" {
			continue
		}
		var err error
		if sel, err = step.set(sel, step.value); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

// renderFormat picks svg or png from --format, else the --output extension
func renderFormat(opts renderOpts) (string, error) {
	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	switch format {
	case "", "svg":
		return "svg", nil
	case "png":
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported format %q (use svg or png)", format)
	}
}
