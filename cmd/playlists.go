package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/formatter"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the first page of the stored account's playlists.
//
// --json is shorthand for --format json. With --output the listing is written to a file.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	if err := r.restore(ctx); err != nil {
		return err
	}

	snap := r.session.Current()
	if !snap.SignedIn() {
		return fmt.Errorf("%w: run 'playster auth login' first", shared.ErrNotAuthenticated)
	}

	ctrl, err := r.controller(auth.WriterPrompter{W: r.output})
	if err != nil {
		return err
	}
	svc := r.playlistService(ctrl)

	r.logger.Debug("fetching playlists", "service", svc.Name(), "account", snap.Identity.Name)

	playlists, err := svc.ListPlaylists(ctx, snap.Identity)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	listing := formatter.Listing{
		Account:   snap.Identity,
		Playlists: models.UniquePlaylists(playlists),
	}

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(format, listing, path)
		if err != nil {
			return err
		}
		r.logger.Info("playlists exported", "path", written, "count", len(listing.Playlists))
		return r.writePlain("✓ Wrote %d playlists to %s\n", len(listing.Playlists), written)
	}

	data, err := formatter.Render(format, listing)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
