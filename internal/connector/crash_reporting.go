package connector

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dataway/truenas-cert-sync/internal"
)

func setupSentry(dsn string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          internal.FullVersion(),
		AttachStacktrace: true,
	})
}

func newSentryHub(name string) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("goroutine", name)
	})

	return hub
}

// recoverWithSentryHub reports a panic to sentry, and then panics again.
func recoverWithSentryHub(hub *sentry.Hub) {
	err := recover()
	if err != nil {
		hub.Recover(err)
		sentry.Flush(time.Second * 5)
		panic(err)
	}
}
