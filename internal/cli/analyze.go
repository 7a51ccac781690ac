package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/mood"
)

var errNoText = errors.New("no text given; pass it as arguments or on stdin")

func (a *app) newAnalyzeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyzes the mood of text",
		Long:  `Reads the text from the arguments, or from stdin when there are none.`,
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

			res, err := d.analyzer.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, res)
			}
			printAnalysis(a.out, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full analysis as JSON")
	return cmd
}

// readText joins args, or reads r when there are none.
func readText(r io.Reader, args []string) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(b)
	}
	if strings.TrimSpace(text) == "" {
		return "", errNoText
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, a analysis.Analysis) {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Primary emotion", fmt.Sprintf("%s (%.2f)", a.Primary, a.EmotionConfidence)},
		{"Sentiment", fmt.Sprintf("%+.2f", a.Sentiment)},
		{"Confidence", fmt.Sprintf("%.2f", a.Confidence)},
		{"Intensity", string(a.Intensity)},
		{"Secondary", formatScores(a.Secondary)},
		{"Context", joinContexts(a.Contexts)},
		{"Negation", yesNo(a.NegationDetected)},
		{"Mixed emotions", yesNo(a.MixedEmotions)},
		{"Temporal", string(a.Temporal)},
		{"Keywords", strings.Join(a.Keywords, ", ")},
	}
	if a.OracleSentiment != nil {
		rows = append(rows, []string{"Oracle sentiment", fmt.Sprintf("%+.2f", *a.OracleSentiment)})
	}
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}

func formatScores(scores []mood.EmotionScore) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s %.2f", s.Emotion, s.Score)
	}
	return strings.Join(parts, ", ")
}

func joinContexts(cs []mood.Context) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
