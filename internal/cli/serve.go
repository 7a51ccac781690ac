package cli

import (
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/oracle"
	"github.com/justestif/go-moodtune/internal/web"
)

func (a *app) newServeCmd() *cobra.Command {
	var prewarm bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the analysis and recommendation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := a.logger("serve")

			d := &deps{}
			defer d.close()
			if err := a.openStore(d); err != nil {
				return err
			}
			if err := a.openDB(ctx, d); err != nil {
				return err
			}
			a.connectPublisher(ctx, d)

			svc, err := a.newAnalyzer(d)
			if err != nil {
				return err
			}

			// The API answers /health while the engine loads.
			go func() {
				if err := svc.Start(); err != nil {
					log.WithError(err).Error("Mood engine failed to start")
					return
				}
				if !prewarm {
					return
				}
				if _, err := svc.Prewarm(ctx); err != nil {
					log.WithError(err).Warn("Prewarm failed")
				}
			}()

			opts := []web.HandlersOption{
				web.WithCatalog(d.catalogs(a.cfg.Recommend.Clusters)),
				web.WithOracleMode(a.cfg.Oracle.Mode),
				web.WithNumSongs(a.cfg.Recommend.NumSongs),
				web.WithLogger(a.logger("web")),
			}
			if g, ok := d.oracle.(*oracle.Guard); ok {
				opts = append(opts, web.WithOracleCircuit(g.State))
			}
			h := web.NewHandlers(svc, opts...)
			return web.NewServer(web.ServerConfig{Addr: a.cfg.Server.Addr}, h, a.logger("web")).Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:5001)")
	bindFlag(a.v, "server.addr", cmd.Flags().Lookup("addr"))
	cmd.Flags().BoolVar(&prewarm, "prewarm", true, "analyze common moods at startup")
	return cmd
}
