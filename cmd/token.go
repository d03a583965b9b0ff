package main

import (
	"context"
	"time"

	"github.com/desertthunder/qaren/internal/ui"
	"github.com/urfave/cli/v3"
)

// Token performs a client-credentials exchange and reports the cached token.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	tokens, err := r.tokenCache()
	if err != nil {
		return err
	}

	value, err := tokens.Token(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("raw") {
		return r.writePlain("%s\n", value)
	}

	snap := tokens.Snapshot()
	now := time.Now()
	r.writePlain("%s\n", ui.Styles.Title("Access token"))
	r.writePlain("%s\n", ui.Styles.KeyValue("Token", snap.Masked()))
	r.writePlain("%s\n", ui.Styles.KeyValue("Reusable until", snap.ExpiresAt.Local().Format(time.RFC3339)))
	r.writePlain("%s\n", ui.Styles.KeyValue("Remaining", snap.Remaining(now).Round(time.Second)))
	if !snap.Valid(now) {
		r.writePlain("%s\n", ui.Styles.Warning("Token lifetime is shorter than the expiry margin; every request will fetch a new one"))
	}
	return nil
}
