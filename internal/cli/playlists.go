package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/justestif/go-moodtune/internal/playlists"
)

func (a *app) newPlaylistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "Lists, shows and deletes saved playlists",
	}
	cmd.AddCommand(
		a.newPlaylistsListCmd(),
		a.newPlaylistsShowCmd(),
		a.newPlaylistsDeleteCmd(),
	)
	return cmd
}

// playlistService opens PostgreSQL, where playlists are kept.
func (a *app) playlistService(ctx context.Context) (*playlists.Service, *deps, error) {
	d := &deps{}
	if err := a.openDB(ctx, d); err != nil {
		return nil, nil, err
	}
	if d.db == nil {
		return nil, nil, errNoDatabase
	}
	return playlists.New(d.db, playlists.WithLogger(a.logger("playlists"))), d, nil
}

func (a *app) newPlaylistsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <spotify-user>",
		Short: "Lists a user's playlists, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, d, err := a.playlistService(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			list, err := svc.GetUserPlaylists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(a.out, "No playlists for %s\n", args[0])
				return nil
			}

			table := tablewriter.NewWriter(a.out)
			table.Header("ID", "Name", "Emotion", "Method", "Spotify", "Created")
			for _, p := range list {
				spotifyID := "-"
				if p.SpotifyID != nil {
					spotifyID = *p.SpotifyID
				}
				table.Append([]string{
					p.ID.String(),
					p.Name,
					p.Emotion,
					p.Method,
					spotifyID,
					p.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			table.Render()
			return nil
		},
	}
}

func (a *app) newPlaylistsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Shows the tracks of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, d, err := a.playlistService(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			p, tracks, err := svc.GetPlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s, sentiment %+.2f, %s)\n", p.Name, p.Emotion, p.Sentiment, p.Method)

			table := tablewriter.NewWriter(a.out)
			table.Header("#", "Track", "Artist", "Score")
			for _, t := range tracks {
				table.Append([]string{
					strconv.Itoa(t.Position + 1),
					t.Name,
					t.Artist,
					fmt.Sprintf("%.3f", t.Score),
				})
			}
			table.Render()
			return nil
		},
	}
}

func (a *app) newPlaylistsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deletes a saved playlist; a copy on Spotify is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, d, err := a.playlistService(cmd.Context())
			if err != nil {
				return err
			}
			defer d.close()

			if err := svc.DeletePlaylist(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted playlist %s\n", args[0])
			return nil
		},
	}
}
