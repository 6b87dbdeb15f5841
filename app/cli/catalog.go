package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"apparel-designer/models"
	"apparel-designer/repository"
	"apparel-designer/utils"
)

type productDoc struct {
	ID   models.ProductType `yaml:"id"`
	Name string             `yaml:"name"`
}

type catalogDoc struct {
	Products       []productDoc `yaml:"products"`
	models.Catalog `yaml:",inline"`
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the product, color and sport catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := repository.NewCatalogRepository()
			if err != nil {
				return err
			}
			doc := catalogDoc{Catalog: catalog.Catalog()}
			for _, pt := range doc.Catalog.Products {
				doc.Products = append(doc.Products, productDoc{ID: pt, Name: utils.MapProductTypeToName(pt)})
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		},
	}
}
