package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/recommend"
)

// recommendFlags are shared by the commands that build playlists.
type recommendFlags struct {
	num     int
	user    string
	tracks  []string
	artists []string
}

func (f *recommendFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.num, "num", "n", 0, "number of songs (default recommend.num_songs)")
	cmd.Flags().StringVar(&f.user, "user", "", "recommend from this user's synced library (needs PostgreSQL)")
	cmd.Flags().StringSliceVar(&f.tracks, "prefer-track", nil, "boost tracks whose name contains this")
	cmd.Flags().StringSliceVar(&f.artists, "prefer-artist", nil, "boost artists whose name contains this")
}

// options uses --num when given and the configured default otherwise.
func (f *recommendFlags) options(num int) recommend.Options {
	if f.num > 0 {
		num = f.num
	}
	return recommend.Options{
		NumSongs:         num,
		PreferredTracks:  f.tracks,
		PreferredArtists: f.artists,
	}
}

func (a *app) newRecommendCmd() *cobra.Command {
	var flags recommendFlags
	cmd := &cobra.Command{
		Use:   "recommend [text...]",
		Short: "Recommends songs for the mood of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			d, err := a.openAnalyzer(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			res, an, err := a.recommendFor(cmd.Context(), d, flags, text)
			if err != nil {
				return err
			}
			printRecommendations(a.out, an, res)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// recommendFor analyzes text and picks songs for it from the catalog
// flags select.
func (a *app) recommendFor(ctx context.Context, d *deps, flags recommendFlags, text string) (recommend.Result, analysis.Analysis, error) {
	if flags.user != "" && d.db == nil {
		return recommend.Result{}, analysis.Analysis{}, errNoDatabase
	}
	an, err := d.analyzer.Analyze(ctx, text)
	if err != nil {
		return recommend.Result{}, analysis.Analysis{}, err
	}
	cat, err := d.catalogs(a.cfg.Recommend.Clusters).LoadCatalog(ctx, flags.user)
	if err != nil {
		return recommend.Result{}, an, fmt.Errorf("loading catalog: %w", err)
	}
	res, err := recommend.Recommend(cat,
		recommend.Input{Emotion: an.Primary, Sentiment: an.Sentiment},
		flags.options(a.cfg.Recommend.NumSongs))
	return res, an, err
}

func printRecommendations(w io.Writer, an analysis.Analysis, res recommend.Result) {
	fmt.Fprintf(w, "Mood: %s (sentiment %+.2f, confidence %.2f), method %s\n",
		res.Emotion, an.Sentiment, an.Confidence, res.Method)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Track", "Artist", "Score", "Target valence")
	for i, r := range res.Tracks {
		table.Append([]string{
			strconv.Itoa(i + 1),
			r.Track.Name,
			r.Track.Artist,
			fmt.Sprintf("%.3f", r.Score),
			fmt.Sprintf("%.2f", r.TargetValence),
		})
	}
	table.Render()
}
