package couchdb

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/keys"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

// DistributeCluster implements C5: it enumerates client's cluster members
// via _membership and fans DistributeNode across them concurrently,
// joining on all before returning. A membership fetch failure fails only
// this server; sibling servers are unaffected by the caller. counter is
// shared across every server reconciled in the same tick, so restarts
// across the whole tick are staggered, not just within one server's
// cluster (see Reconciler.Tick).
func DistributeCluster(
	ctx context.Context,
	client *Client,
	server string,
	desired keys.Set,
	counter *RestartCounter,
	store *status.Store,
) ([]NodeOutcome, error) {
	nodes, err := client.Membership(ctx)
	if err != nil {
		return nil, fmt.Errorf("membership of %s: %w", server, err)
	}

	outcomes := make([]NodeOutcome, len(nodes))

	var g errgroup.Group
	for i, node := range nodes {
		g.Go(func() error {
			outcomes[i] = DistributeNode(ctx, client, server, node, desired, counter, store)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, nil
}
