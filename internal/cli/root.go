// Package cli implements the moodtune command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justestif/go-moodtune/internal/config"
)

// app is the state shared by all commands: configuration, once loaded,
// and the logger built from it.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
	out     io.Writer
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		v:   config.New(),
		log: logrus.New(),
		out: out,
	}

	root := &cobra.Command{
		Use:   "moodtune",
		Short: "Reads the mood of text and picks music to match",
		Long: `moodtune analyzes free text for sentiment, emotions and context, and
recommends tracks from a clustered music catalog to match the mood.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.moodtune.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("sqlite", "", "path to the local SQLite catalog")
	flags.String("database", "", "PostgreSQL URL for multi-user storage")
	flags.String("oracle", "", "sentiment oracle (none, vader or http)")
	bindFlag(a.v, "log.level", flags.Lookup("log-level"))
	bindFlag(a.v, "log.format", flags.Lookup("log-format"))
	bindFlag(a.v, "sqlite.path", flags.Lookup("sqlite"))
	bindFlag(a.v, "database.url", flags.Lookup("database"))
	bindFlag(a.v, "oracle.mode", flags.Lookup("oracle"))

	root.AddCommand(
		a.newAnalyzeCmd(),
		a.newRecommendCmd(),
		a.newServeCmd(),
		a.newCatalogCmd(),
		a.newSpotifyCmd(),
		a.newHistoryCmd(),
		a.newPlaylistsCmd(),
	)
	return root
}

// load reads the config file and environment, then configures logging.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	used, err := config.ReadFile(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := configureLogger(a.log, cfg.Log); err != nil {
		return err
	}
	a.log.SetOutput(cmd.ErrOrStderr())
	if used != "" {
		a.log.WithField("file", used).Debug("Using config file")
	}
	return nil
}

func configureLogger(l *logrus.Logger, cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func (a *app) logger(component string) *logrus.Entry {
	return a.log.WithField("component", component)
}
