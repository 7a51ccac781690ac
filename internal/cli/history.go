package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// historyRow is one analysis as listed by the history command.
type historyRow struct {
	at         time.Time
	emotion    string
	sentiment  float64
	confidence float64
	text       string
}

const historyTextWidth = 60

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Lists recent analyses and how often each emotion was seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := &deps{}
			defer d.close()
			if err := a.openStore(d); err != nil {
				return err
			}
			if err := a.openDB(ctx, d); err != nil {
				return err
			}

			rows, counts, err := loadHistory(ctx, d, limit)
			if err != nil {
				return err
			}
			printHistory(a.out, rows, counts)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of analyses to list")
	return cmd
}

// loadHistory reads from PostgreSQL when connected, where analyses are
// recorded in that case, and from the local store otherwise.
func loadHistory(ctx context.Context, d *deps, limit int) ([]historyRow, map[string]int, error) {
	var rows []historyRow
	var counts map[string]int

	if d.db != nil {
		recent, err := d.db.Analyses().Recent(ctx, limit)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range recent {
			rows = append(rows, historyRow{r.CreatedAt, r.PrimaryEmotion, r.Sentiment, r.Confidence, r.Text})
		}
		if counts, err = d.db.Analyses().EmotionCounts(ctx); err != nil {
			return nil, nil, err
		}
		return rows, counts, nil
	}

	recent, err := d.store.History(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range recent {
		rows = append(rows, historyRow{r.AnalyzedAt, string(r.Primary), r.Sentiment, r.Confidence, r.Text})
	}
	if counts, err = d.store.EmotionCounts(ctx); err != nil {
		return nil, nil, err
	}
	return rows, counts, nil
}

func printHistory(w io.Writer, rows []historyRow, counts map[string]int) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No analyses yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("When", "Emotion", "Sentiment", "Confidence", "Text")
	for _, r := range rows {
		table.Append([]string{
			r.at.Local().Format("2006-01-02 15:04"),
			r.emotion,
			fmt.Sprintf("%+.2f", r.sentiment),
			fmt.Sprintf("%.2f", r.confidence),
			truncate(r.text, historyTextWidth),
		})
	}
	table.Render()

	emotions := make([]string, 0, len(counts))
	for e := range counts {
		emotions = append(emotions, e)
	}
	slices.SortFunc(emotions, func(a, b string) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		if a < b {
			return -1
		}
		return 1
	})

	summary := tablewriter.NewWriter(w)
	summary.Header("Emotion", "Analyses")
	for _, e := range emotions {
		summary.Append([]string{e, strconv.Itoa(counts[e])})
	}
	summary.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
