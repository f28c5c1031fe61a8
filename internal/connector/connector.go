// Package connector runs the sync process: it connects to the appliance,
// keeps its certificates in sync with the credential files, and serves
// metrics.
package connector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/dataway/truenas-cert-sync/api"
	"github.com/dataway/truenas-cert-sync/internal"
	"github.com/dataway/truenas-cert-sync/internal/credentials"
	"github.com/dataway/truenas-cert-sync/internal/jobs"
	"github.com/dataway/truenas-cert-sync/internal/logging"
	"github.com/dataway/truenas-cert-sync/internal/reconciler"
	"github.com/dataway/truenas-cert-sync/internal/watch"
	"github.com/dataway/truenas-cert-sync/metrics"
)

type connector struct {
	source     *credentials.Source
	reconciler *reconciler.Reconciler
	metrics    *metrics.Metrics
	hub        *sentry.Hub
	now        func() time.Time
}

// Run syncs once, and then again whenever the credential files change, until
// ctx is done. When opts.Oneshot is true Run returns after the first sync.
func Run(ctx context.Context, opts Options) error {
	return run(ctx, opts, afero.NewOsFs())
}

func run(ctx context.Context, opts Options, fs afero.Fs) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	baseURL, err := api.BaseURL(opts.URL)
	if err != nil {
		return &internal.ConfigError{Field: envName("URL"), Message: err.Error()}
	}

	transport, err := newTransport(opts)
	if err != nil {
		return err
	}

	if err := setupSentry(opts.SentryDSN); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	defer sentry.Flush(2 * time.Second)

	promRegistry := prometheus.NewRegistry()
	c := &connector{
		source:  credentials.NewSource(fs, opts.Sync),
		metrics: metrics.New(promRegistry),
		hub:     newSentryHub("sync"),
		now:     time.Now,
	}

	client := &api.Client{
		Name:     "connector",
		Version:  internal.FullVersion(),
		URL:      baseURL,
		APIKey:   string(opts.Apikey),
		Username: opts.Username,
		Password: string(opts.Password),
		HTTP: http.Client{
			Transport: transport,
			Timeout:   time.Minute,
		},
		ObserveFunc: c.metrics.ObserveAPIRequest,
	}

	tracker := jobs.NewTracker(client, time.Duration(opts.JobPollInterval))
	tracker.ObserveFunc = func(state api.JobState, elapsed time.Duration) {
		c.metrics.ObserveJob(string(state), elapsed)
	}

	c.reconciler = reconciler.New(client, tracker, reconciler.WithObserver(func(op reconciler.Operation) {
		c.metrics.ObserveMutation(string(op))
	}))

	loop := watch.New(c.source, c.sync, time.Duration(opts.WatchInterval))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	if !opts.MetricsAddr.Empty() {
		addr, err := serveMetrics(ctx, group, opts.MetricsAddr.String(), promRegistry)
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		logging.Infof("serving metrics on http://%v/metrics", addr)
	}

	logging.L.Info().
		Str("version", internal.FullVersion()).
		Str("url", baseURL).
		Bool("oneshot", opts.Oneshot).
		Bool("force", opts.Force).
		Msg("starting truenas-cert-sync")

	group.Go(func() error {
		defer recoverWithSentryHub(c.hub)
		// stops the metrics server once the loop is done
		defer cancel()
		return loop.Run(ctx, opts.Oneshot, opts.Force)
	})

	return group.Wait()
}

// sync runs one reconciliation pass with the current content of the
// credential files.
func (c *connector) sync(ctx context.Context, force bool) error {
	result, err := c.syncOnce(ctx, force)
	switch {
	case err != nil:
		c.metrics.ObservePass(metrics.ResultFailed, c.now())
		c.hub.WithScope(func(scope *sentry.Scope) {
			if code := api.ErrorStatusCode(err); code != 0 {
				scope.SetTag("status", strconv.Itoa(int(code)))
			}
			c.hub.CaptureException(err)
		})
		return err
	case result.Converged():
		c.metrics.ObservePass(metrics.ResultConverged, c.now())
		logging.Infof("appliance is up to date")
	default:
		c.metrics.ObservePass(metrics.ResultChanged, c.now())
		logging.L.Info().
			Str("ca", string(result.CAAction)).
			Str("certificate", string(result.CertAction)).
			Int("certificateID", result.CertificateID).
			Int("mutations", result.Mutations).
			Msg("sync complete")
	}
	return nil
}

func (c *connector) syncOnce(ctx context.Context, force bool) (*reconciler.Result, error) {
	desired, err := c.source.Resolve()
	if err != nil {
		return nil, err
	}
	return c.reconciler.Reconcile(ctx, desired, force)
}

// serveMetrics starts an http server for promRegistry in group. The server
// is closed when ctx is done.
func serveMetrics(ctx context.Context, group *errgroup.Group, addr string, promRegistry *prometheus.Registry) (net.Addr, error) {
	server := &http.Server{
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Addr:              addr,
		Handler:           metrics.NewHandler(promRegistry),
		ErrorLog:          logging.NewHTTPErrorLog(),
	}

	l, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, err
	}

	group.Go(func() error {
		err := server.Serve(l)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})
	return l.Addr(), nil
}
