package listener

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/escherba/phraser/internal/engine"
	"github.com/escherba/phraser/internal/storage"
)

const debounce = 200 * time.Millisecond

type notifier interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
}

type rebuilder interface {
	BuildSnapshot(ctx context.Context, loader storage.Loader) error
}

// ListenAndRefresh rebuilds eng from loader whenever a notification arrives
// on channel. It returns when ctx is done.
func ListenAndRefresh(ctx context.Context, st *storage.Store, eng *engine.Engine, loader storage.Loader, channel string, baseBackoff time.Duration) {
	conn, err := st.PgxPool().Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("acquire conn for listen")
		return
	}
	defer conn.Release()

	if channel == "" {
		channel = st.ListenChannel()
	}
	if _, err = conn.Exec(ctx, "LISTEN "+channel); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("listen")
		return
	}
	log.Info().Str("channel", channel).Msg("listening for phrase config changes")

	refreshLoop(ctx, conn.Conn(), eng, loader, baseBackoff, debounce)
}

// refreshLoop rebuilds on every notification, at most once per window.
// Notifications inside the window are coalesced into one rebuild when the
// window closes.
func refreshLoop(ctx context.Context, n notifier, eng rebuilder, loader storage.Loader, baseBackoff, window time.Duration) {
	var (
		lastRefresh time.Time
		pending     bool
	)
	refresh := func(reason string) {
		lastRefresh = time.Now()
		pending = false
		log.Info().Str("reason", reason).Msg("phrase configs changed; refreshing snapshot")
		if err := eng.BuildSnapshot(ctx, loader); err != nil {
			log.Error().Err(err).Msg("refresh snapshot error")
		}
	}

	for {
		waitCtx, cancelWait := ctx, context.CancelFunc(func() {})
		if pending {
			waitCtx, cancelWait = context.WithDeadline(ctx, lastRefresh.Add(window))
		}
		ntf, err := n.WaitForNotification(waitCtx)
		cancelWait()

		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("listener stopped")
				return
			}
			if pending && waitCtx.Err() != nil {
				refresh("debounced")
				continue
			}
			backoff := jitter(baseBackoff)
			log.Error().Err(err).Dur("retry_in", backoff).Msg("notify wait error")
			select {
			case <-ctx.Done():
				log.Info().Msg("listener stopped")
				return
			case <-time.After(backoff):
			}
			continue
		}
		if time.Since(lastRefresh) < window {
			pending = true
			continue
		}
		refresh(ntf.Channel)
	}
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	factor := 0.5 + rand.Float64() // 0.5x-1.5x
	return time.Duration(float64(base) * factor)
}
