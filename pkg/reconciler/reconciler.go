// Package reconciler implements the periodic driver (C6) that orchestrates
// one full tick: collect keys from every IdP, then fan out the cluster
// distributor across every configured CouchDB server.
package reconciler

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/config"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/couchdb"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/keys"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/logger"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/metrics"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

// StartupDelay is the wait before the first tick, giving the process time
// to finish binding its HTTP listener before doing any outbound work. It
// is a var rather than a const solely so tests can shrink it.
var StartupDelay = 10 * time.Second

// Reconciler owns the periodic tick loop.
type Reconciler struct {
	cfg        *config.Config
	idpClient  *http.Client
	couchHTTP  *http.Client
	store      *status.Store
	metrics    *metrics.Metrics
	tickRunner atomic.Bool
}

// New builds a Reconciler. idpClient is used for every IdP call; couchHTTP
// must already carry HTTP Basic credentials for every configured CouchDB
// server (see pkg/networking.HTTPClientBuilder.WithBasicAuth).
func New(cfg *config.Config, idpClient, couchHTTP *http.Client, store *status.Store, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		cfg:       cfg,
		idpClient: idpClient,
		couchHTTP: couchHTTP,
		store:     store,
		metrics:   m,
	}
}

// Run blocks, running one tick after StartupDelay and then every
// cfg.UpdateInterval() until ctx is cancelled. A slow tick that is still
// running when the next tick is due causes that tick to be skipped rather
// than run concurrently (the single-flight gate fixing the distilled
// spec's "overlapping ticks" open question).
func (r *Reconciler) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(StartupDelay):
	}

	r.runGated(ctx)

	ticker := time.NewTicker(r.cfg.UpdateInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runGated(ctx)
		}
	}
}

func (r *Reconciler) runGated(ctx context.Context) {
	if !r.tickRunner.CompareAndSwap(false, true) {
		logger.Warn("skipping tick: previous tick is still running")
		return
	}
	defer r.tickRunner.Store(false)

	if err := r.Tick(ctx); err != nil {
		logger.Errorf("tick failed: %v", err)
	}
}

// Tick runs exactly one reconciliation pass: collectKeys() |>
// fanout(CouchDBservers, DistributeCluster). It returns an error only when
// the tick failed outright (no keys retrieved); per-server/per-node
// failures are logged and do not fail the tick as a whole.
func (r *Reconciler) Tick(ctx context.Context) error {
	tickID := uuid.NewString()
	start := time.Now()
	r.metrics.TicksTotal.Inc()

	logger.Infow("tick starting", "tickID", tickID, "idps", len(r.cfg.IdPs), "servers", len(r.cfg.CouchDBservers))

	keySet, err := keys.Collect(ctx, r.idpClient, r.cfg.IdPs)
	if err != nil {
		r.metrics.TicksFailed.Inc()
		logger.Errorw("tick failed: no keys retrieved", "tickID", tickID, "error", err)
		return err
	}

	// One counter for the whole tick, shared across every configured
	// CouchDB server, so restarts are staggered tick-wide rather than
	// just within a single server's cluster.
	counter := couchdb.NewRestartCounter()

	var g errgroup.Group
	for _, server := range r.cfg.CouchDBservers {
		server := server
		g.Go(func() error {
			r.reconcileServer(ctx, tickID, server, keySet, counter)
			return nil
		})
	}
	_ = g.Wait()

	r.metrics.TickDuration.Observe(time.Since(start).Seconds())
	logger.Infow("tick complete", "tickID", tickID, "durationMS", time.Since(start).Milliseconds())
	return nil
}

func (r *Reconciler) reconcileServer(ctx context.Context, tickID, server string, keySet keys.Set, counter *couchdb.RestartCounter) {
	client := couchdb.NewClient(server, r.couchHTTP)

	outcomes, err := couchdb.DistributeCluster(ctx, client, server, keySet, counter, r.store)
	if err != nil {
		logger.Warnw("cluster distribution failed", "tickID", tickID, "server", server, "error", err)
		return
	}

	for _, o := range outcomes {
		if o.ReadErr != nil {
			logger.Warnw("node read failed", "tickID", tickID, "server", server, "node", o.Node, "error", o.ReadErr)
			continue
		}
		if len(o.Updated) > 0 {
			r.metrics.PutsIssued.Add(float64(len(o.Updated)))
			r.metrics.PutsSucceeded.Add(float64(len(o.Updated)))
		}
		if o.RestartRequested {
			r.metrics.RestartsIssued.Inc()
			if o.RestartErr == nil {
				r.metrics.RestartsSucceeded.Inc()
			} else {
				logger.Warnw("restart failed", "tickID", tickID, "server", server, "node", o.Node, "error", o.RestartErr)
			}
		}
	}
}
