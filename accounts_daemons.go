package accounts

import (
	"context"

	"github.com/caasmo/accounts/auth"
)

// dispatchDaemon drains one-time code deliveries still in flight at
// shutdown.
type dispatchDaemon struct {
	svc *auth.Service
}

func (d *dispatchDaemon) Name() string { return "otp dispatch" }

func (d *dispatchDaemon) Start() error { return nil }

func (d *dispatchDaemon) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.svc.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// closerDaemon releases a resource opened by New at shutdown.
type closerDaemon struct {
	name  string
	close func() error
}

func (d *closerDaemon) Name() string { return d.name }

func (d *closerDaemon) Start() error { return nil }

func (d *closerDaemon) Stop(ctx context.Context) error { return d.close() }
