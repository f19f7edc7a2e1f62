package cli

import (
	"context"
)

// watchSession logs session transitions until ctx ends.
func (a *App) watchSession(ctx context.Context) {
	ch, cancel := a.session.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			if u == nil {
				a.logger.Debug(ctx, "session cleared")
			} else {
				a.logger.Debug(ctx, "session active", "user_id", u.ID, "role", u.Role)
			}
		}
	}
}

// watchLoading logs busy transitions until ctx ends.
func (a *App) watchLoading(ctx context.Context) {
	ch, cancel := a.loading.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case busy, ok := <-ch:
			if !ok {
				return
			}
			a.logger.Debug(ctx, "loading", "busy", busy)
		}
	}
}
