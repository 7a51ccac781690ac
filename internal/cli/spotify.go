package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/auth"
	"github.com/justestif/go-moodtune/internal/lastfm"
	"github.com/justestif/go-moodtune/internal/mood"
	"github.com/justestif/go-moodtune/internal/playlists"
	"github.com/justestif/go-moodtune/internal/spotify"
	"github.com/justestif/go-moodtune/internal/sync"
	"github.com/justestif/go-moodtune/internal/tags"
)

func (a *app) newSpotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spotify",
		Short: "Syncs liked songs from Spotify and saves playlists there",
	}
	cmd.AddCommand(
		a.newSpotifyLoginCmd(),
		a.newSpotifyLogoutCmd(),
		a.newSpotifySyncCmd(),
		a.newSpotifyPlaylistCmd(),
	)
	return cmd
}

func (a *app) authenticator() (*auth.Authenticator, error) {
	s := a.cfg.Spotify
	return auth.New(auth.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURL,
		TokenPath:    s.TokenPath,
	}, a.out, a.logger("auth"))
}

// spotifyClient authenticates, running the browser flow when no cached
// token works.
func (a *app) spotifyClient(ctx context.Context) (*spotify.Client, error) {
	au, err := a.authenticator()
	if err != nil {
		return nil, err
	}
	api, err := au.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}
	return spotify.New(api, spotify.WithLogger(a.logger("spotify"))), nil
}

func (a *app) newSpotifyLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorizes moodtune with Spotify and caches the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.spotifyClient(cmd.Context())
			if err != nil {
				return err
			}
			user, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.DisplayName, user.ID)
			return nil
		},
	}
}

func (a *app) newSpotifyLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Removes the cached Spotify token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			au, err := a.authenticator()
			if err != nil {
				return err
			}
			if err := au.Logout(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", au.TokenPath())
			return nil
		},
	}
}

func (a *app) newSpotifySyncCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Imports liked songs and their audio features",
		Long: `Without PostgreSQL the liked songs go into the local catalog. With
PostgreSQL they are linked to the Spotify user and, when a Last.fm API key
is configured, tagged with moods read from Last.fm tags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.spotifyClient(ctx)
			if err != nil {
				return err
			}

			d := &deps{}
			defer d.close()
			if err := a.openStore(d); err != nil {
				return err
			}
			if err := a.openDB(ctx, d); err != nil {
				return err
			}

			if d.db == nil {
				return a.syncLocal(ctx, d, client)
			}

			opts := []sync.Option{sync.WithLogger(a.logger("sync"))}
			if fetcher, err := a.tagFetcher(d); err != nil {
				return err
			} else if fetcher != nil {
				opts = append(opts, sync.WithTagFetcher(fetcher))
			}

			res, err := sync.New(d.db, opts...).SyncLikedSongs(ctx, client, force)
			if errors.Is(err, sync.ErrSyncTooRecent) {
				return fmt.Errorf("%w; use --force to sync anyway", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Synced %d tracks for %s (%d new, %d with audio features, %d removed, %d tagged)\n",
				res.TracksCount, res.UserID, res.Added, res.WithFeatures, res.Removed, res.Tagged)
			for _, e := range mood.Emotions {
				if n := res.MoodCounts[e]; n > 0 {
					fmt.Fprintf(a.out, "  %-14s %d\n", e, n)
				}
			}
			top, err := d.db.Tags().TopForUser(ctx, res.UserID, 8)
			if err != nil {
				return err
			}
			if len(top) > 0 {
				names := make([]string, len(top))
				for i, tc := range top {
					names[i] = tc.Name
				}
				fmt.Fprintf(a.out, "Top tags: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "sync even within the cooldown")
	return cmd
}

func (a *app) syncLocal(ctx context.Context, d *deps, client *spotify.Client) error {
	tracks, err := client.FetchLibrary(ctx)
	if err != nil {
		return err
	}
	if err := d.store.UpsertTracks(ctx, tracks); err != nil {
		return err
	}
	total, err := d.store.CountTracks(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d liked songs; catalog now has %d tracks\n", len(tracks), total)
	return nil
}

// tagFetcher returns nil when no Last.fm API key is configured.
func (a *app) tagFetcher(d *deps) (sync.TagFetcher, error) {
	lfCfg := lastfm.Config{APIKey: a.cfg.LastFM.APIKey}
	if err := lfCfg.Validate(); err != nil {
		a.logger("sync").WithError(err).Info("Skipping Last.fm tags")
		return nil, nil
	}
	engine, err := mood.NewEngine()
	if err != nil {
		return nil, err
	}
	lf := lastfm.NewClient(lfCfg)
	svc := tags.NewService(lf, tags.WithEngine(engine))
	return tags.NewCachedTagFetcher(d.db.Tags(), svc, a.logger("tags")), nil
}

func (a *app) newSpotifyPlaylistCmd() *cobra.Command {
	var flags recommendFlags
	cmd := &cobra.Command{
		Use:   "playlist [text...]",
		Short: "Creates a private Spotify playlist for the mood of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text, err := readText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			client, err := a.spotifyClient(ctx)
			if err != nil {
				return err
			}

			d, err := a.openAnalyzer(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			if d.db != nil && flags.user == "" {
				user, err := client.CurrentUser(ctx)
				if err != nil {
					return err
				}
				flags.user = user.ID
			}

			res, an, err := a.recommendFor(ctx, d, flags, text)
			if err != nil {
				return err
			}
			printRecommendations(a.out, an, res)

			req := playlists.Request{UserID: flags.user, Analysis: &an, Result: res}
			if d.db == nil {
				return a.createDirect(ctx, client, req)
			}

			p, err := playlists.New(d.db, playlists.WithLogger(a.logger("playlists"))).Create(ctx, req, client)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created playlist %q (%s)\n", p.Name, *p.SpotifyID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// createDirect creates the playlist on Spotify only.
func (a *app) createDirect(ctx context.Context, client *spotify.Client, req playlists.Request) error {
	name := playlists.PlaylistName(req.Result, time.Now())
	ids := make([]string, len(req.Result.Tracks))
	for i, r := range req.Result.Tracks {
		ids[i] = r.Track.ID
	}
	id, err := client.CreatePrivatePlaylist(ctx, name, playlists.Description(req), ids)
	if err != nil {
		return err
	}
	a.logger("playlists").WithFields(logrus.Fields{"spotify": id, "tracks": len(ids)}).Info("Playlist created on Spotify")
	fmt.Fprintf(a.out, "Created playlist %q (%s)\n", name, id)
	return nil
}
