// Command profile_refresh recomputes behavior profile vectors outside the
// request path, for one user or for every user in the catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/trit-recommender/internal/app"
	"github.com/yungbote/trit-recommender/internal/platform/envutil"
)

func main() {
	userID := flag.Int64("user", 0, "refresh a single user id (0 = all users)")
	workers := flag.Int("workers", envutil.Int("PROFILE_REFRESH_WORKERS", 4), "concurrent refreshes")
	timeout := flag.Duration("timeout", envutil.Duration("PROFILE_REFRESH_TIMEOUT", 30*time.Minute), "overall deadline")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ids := []int64{*userID}
	if *userID == 0 {
		ids, err = a.Repos.Catalog.ListUserIDs(ctx, nil)
		if err != nil {
			a.Log.Error("list users failed", "error", err)
			a.Close()
			os.Exit(1)
		}
	}

	var refreshed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ok, err := a.Services.Profiles.EnsureFresh(gctx, id)
			if err != nil {
				failed.Add(1)
				a.Log.Warn("profile refresh failed", "user_id", id, "error", err)
				return nil
			}
			if ok {
				refreshed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	a.Log.Info("profile refresh finished",
		"users", len(ids),
		"refreshed", refreshed.Load(),
		"failed", failed.Load(),
	)
	if failed.Load() > 0 || ctx.Err() != nil {
		a.Close()
		os.Exit(1)
	}
}
