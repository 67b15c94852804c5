package keys

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/certconv"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/jwks"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/logger"
)

// ErrNoKeysRetrieved is returned when at least one IdP is configured but the
// merged KeySet is empty (every IdP failed or yielded no convertible keys).
var ErrNoKeysRetrieved = errors.New("no keys retrieved from any identity provider")

// Collect fans jwks.Fetch out across every idpBaseURL concurrently, joins
// on all of them regardless of individual failure, converts every
// certificate-bound key via certconv, and merges the results. On collision
// the later-processed key wins, matching the per-IdP ordering supplied.
//
// Collect succeeds iff the resulting Set is non-empty; an empty configured
// list is not itself an error and yields an empty Set, but zero results
// from a non-empty list is ErrNoKeysRetrieved.
func Collect(ctx context.Context, client *http.Client, idpBaseURLs []string) (Set, error) {
	if len(idpBaseURLs) == 0 {
		return Set{}, nil
	}

	perIdP := make([]Set, len(idpBaseURLs))

	var g errgroup.Group
	for i, baseURL := range idpBaseURLs {
		g.Go(func() error {
			set, err := collectOne(ctx, client, baseURL)
			if err != nil {
				logger.Warnf("idp %s: %v", baseURL, err)
				return nil // isolate failure to this branch; do not cancel siblings
			}
			perIdP[i] = set
			return nil
		})
	}
	_ = g.Wait() // collectOne never returns a non-nil error to the group

	merged := Set{}
	for _, set := range perIdP {
		for id, pem := range set {
			merged[id] = pem
		}
	}

	if len(merged) == 0 {
		return nil, ErrNoKeysRetrieved
	}
	return merged, nil
}

func collectOne(ctx context.Context, client *http.Client, baseURL string) (Set, error) {
	doc, err := jwks.Fetch(ctx, client, baseURL)
	if err != nil {
		return nil, err
	}

	set := Set{}
	for _, k := range doc.Keys {
		if len(k.X5c) == 0 {
			continue
		}
		pem, err := certconv.CertToPEM(k.X5c[0], k.Alg)
		if err != nil {
			logger.Warnf("idp %s: key %s: %v", baseURL, k.Kid, err)
			continue
		}
		set[NewID(k.Kty, k.Kid)] = pem
	}
	return set, nil
}
