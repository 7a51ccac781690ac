package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/store"
)

func (a *app) newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manages the local track catalog",
	}
	cmd.AddCommand(a.newCatalogImportCmd(), a.newCatalogClustersCmd())
	return cmd
}

func (a *app) newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Imports tracks with audio features from a CSV file",
		Long: `The CSV needs a header with track_name, artist_name, popularity, valence,
energy, danceability, acousticness and tempo. track_id and liked are optional.
Rows that cannot be parsed are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			d := &deps{}
			defer d.close()
			if err := a.openStore(d); err != nil {
				return err
			}

			res, err := d.store.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			total, err := d.store.CountTracks(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d tracks (%d rows skipped); catalog now has %d tracks\n",
				res.Imported, res.Skipped, total)
			return nil
		},
	}
}

func (a *app) newCatalogClustersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "Clusters the local catalog and summarizes each mood cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := &deps{}
			defer d.close()
			if err := a.openStore(d); err != nil {
				return err
			}

			cat, err := store.NewCatalogs(d.store, a.cfg.Recommend.Clusters).LoadCatalog(cmd.Context(), "")
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, clustering.FormatCatalogSummary(cat))
			return nil
		},
	}
}
