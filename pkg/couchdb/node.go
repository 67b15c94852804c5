package couchdb

import (
	"context"
	"time"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/keys"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/logger"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

// RestartStagger is the fixed inter-restart delay: the N-th restart
// requested in a tick waits N * RestartStagger from the moment its updates
// finished. It is a var rather than a const solely so tests can shrink it.
var RestartStagger = 5 * time.Second

// NodeOutcome reports what happened when reconciling a single node.
type NodeOutcome struct {
	Server           string
	Node             string
	Updated          []keys.ID
	ReadErr          error
	RestartRequested bool
	RestartErr       error
}

// DistributeNode implements C4 for a single (server, node) pair: it reads
// the node's current jwt_keys, PUTs every changed or missing key, and, if
// at least one PUT was issued (regardless of whether it succeeded — see
// DESIGN.md's discussion of this preserved behavior), schedules a
// staggered restart using counter.
//
// A read failure aborts only this node; sibling nodes are unaffected. The
// caller is responsible for running DistributeNode concurrently across
// nodes and joining on completion.
func DistributeNode(
	ctx context.Context,
	client *Client,
	server, node string,
	desired keys.Set,
	counter *RestartCounter,
	store *status.Store,
) NodeOutcome {
	outcome := NodeOutcome{Server: server, Node: node}

	current, err := client.GetJWTKeys(ctx, node)
	if err != nil {
		outcome.ReadErr = err
		return outcome
	}

	issued := false
	for id, desiredPEM := range desired {
		if current[string(id)] == desiredPEM {
			continue
		}
		issued = true

		url := client.JWTKeysURL(node, string(id))
		if err := client.PutJWTKey(ctx, node, string(id), desiredPEM); err != nil {
			logger.Warnf("couchdb %s: PUT %s: %v", server, url, err)
			continue
		}
		store.Record(url, time.Now())
		outcome.Updated = append(outcome.Updated, id)
	}

	if !issued {
		return outcome
	}

	outcome.RestartRequested = true
	n := counter.Next()
	delay := time.Duration(n) * RestartStagger

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		outcome.RestartErr = ctx.Err()
		return outcome
	}

	if err := client.Restart(ctx, node); err != nil {
		outcome.RestartErr = err
		logger.Warnf("couchdb %s: restart node %s: %v", server, node, err)
	}
	return outcome
}
