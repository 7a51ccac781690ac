package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/db"
	"github.com/justestif/go-moodtune/internal/events"
	"github.com/justestif/go-moodtune/internal/oracle"
	"github.com/justestif/go-moodtune/internal/playlists"
	"github.com/justestif/go-moodtune/internal/store"
)

var errNoDatabase = errors.New("this command needs PostgreSQL; set database.url or --database")

func bindFlag(v *viper.Viper, key string, f *pflag.Flag) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// deps holds the services a command opened. close releases them in
// reverse order.
type deps struct {
	store     *store.Store
	db        *db.DB
	publisher *events.Publisher
	analyzer  *analysis.Service
	oracle    oracle.Classifier
	closers   []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (a *app) openStore(d *deps) error {
	s, err := store.New(a.cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", a.cfg.SQLite.Path, err)
	}
	d.store = s
	d.closers = append(d.closers, func() { s.Close() })
	return nil
}

// openDB connects to PostgreSQL when configured. It leaves d.db nil
// otherwise.
func (a *app) openDB(ctx context.Context, d *deps) error {
	if a.cfg.Database.URL == "" {
		return nil
	}
	database, err := db.New(ctx, a.cfg.Database.URL, db.WithMaxConns(a.cfg.Database.MaxConns))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return fmt.Errorf("migrating database: %w", err)
	}
	d.db = database
	d.closers = append(d.closers, database.Close)
	return nil
}

// connectPublisher connects to the MQTT broker when configured. A broker
// that cannot be reached disables publishing instead of failing.
func (a *app) connectPublisher(ctx context.Context, d *deps) {
	m := a.cfg.MQTT
	if m.Broker == "" {
		return
	}
	log := a.logger("events")
	p := events.NewPublisher(events.Config{
		BrokerURL:   m.Broker,
		ClientID:    m.ClientID,
		Username:    m.Username,
		Password:    m.Password,
		TopicPrefix: m.TopicPrefix,
	}, log)
	if err := p.Connect(ctx); err != nil {
		log.WithError(err).Warn("MQTT unavailable, not publishing analyses")
		return
	}
	d.publisher = p
	d.closers = append(d.closers, p.Close)
}

func (a *app) newOracle() (oracle.Classifier, error) {
	o := a.cfg.Oracle
	switch o.Mode {
	case "vader":
		v, err := oracle.NewVADER()
		if err != nil {
			return nil, fmt.Errorf("loading VADER: %w", err)
		}
		return v, nil
	case "http":
		c := oracle.NewHTTPClient(oracle.HTTPConfig{
			BaseURL: o.URL,
			Token:   o.Token,
			Timeout: o.Timeout,
			RPS:     o.RPS,
			Retries: o.Retries,
		})
		return oracle.NewGuard(c, oracle.GuardConfig{
			Name:     "inference-api",
			Timeout:  o.Timeout,
			Failures: a.cfg.Breaker.Failures,
			Cooldown: a.cfg.Breaker.Cooldown,
		}), nil
	}
	return nil, nil
}

// newAnalyzer builds the analysis service over whatever d opened:
// analyses are recorded to PostgreSQL when connected, otherwise to the
// local store, and published when a broker is connected. It does not
// call Start.
func (a *app) newAnalyzer(d *deps) (*analysis.Service, error) {
	cache, err := analysis.NewCache(a.cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	opts := []analysis.Option{
		analysis.WithCache(cache),
		analysis.WithLogger(a.logger("analysis")),
	}

	c, err := a.newOracle()
	if err != nil {
		return nil, err
	}
	if c != nil {
		opts = append(opts, analysis.WithOracle(c))
		d.oracle = c
	}

	switch {
	case d.db != nil:
		opts = append(opts, analysis.WithRecorder(d.db.Recorder()))
	case d.store != nil:
		opts = append(opts, analysis.WithRecorder(d.store))
	}
	if d.publisher != nil {
		opts = append(opts, analysis.WithPublisher(d.publisher))
	}

	d.analyzer = analysis.NewService(opts...)
	return d.analyzer, nil
}

// openAnalyzer opens the local store, PostgreSQL and MQTT as configured and
// returns a started analyzer.
func (a *app) openAnalyzer(ctx context.Context) (*deps, error) {
	d := &deps{}
	if err := a.openStore(d); err != nil {
		return nil, err
	}
	if err := a.openDB(ctx, d); err != nil {
		d.close()
		return nil, err
	}
	a.connectPublisher(ctx, d)

	svc, err := a.newAnalyzer(d)
	if err != nil {
		d.close()
		return nil, err
	}
	if err := svc.Start(); err != nil {
		d.close()
		return nil, err
	}
	return d, nil
}

// catalogs picks a user's PostgreSQL catalog when a user is named and the
// local catalog otherwise.
type catalogs struct {
	local *store.Catalogs
	users *playlists.Service
}

func (d *deps) catalogs(k int) *catalogs {
	c := &catalogs{local: store.NewCatalogs(d.store, k)}
	if d.db != nil {
		c.users = playlists.New(d.db, playlists.WithClusters(k))
	}
	return c
}

func (c *catalogs) LoadCatalog(ctx context.Context, userID string) (*clustering.Catalog, error) {
	if userID != "" && c.users != nil {
		return c.users.LoadCatalog(ctx, userID)
	}
	return c.local.LoadCatalog(ctx, userID)
}
