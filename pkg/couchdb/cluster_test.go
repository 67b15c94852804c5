package couchdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyonddemise/couchdb-idp-updater/pkg/keys"
	"github.com/beyonddemise/couchdb-idp-updater/pkg/status"
)

// multiNodeCouchDB fakes a 3-node cluster where every node needs the same
// key update, and records the wall-clock time each node's restart lands.
type multiNodeCouchDB struct {
	mu            sync.Mutex
	restartTimes  []time.Time
	restartByNode map[string]time.Time
}

func newMultiNodeCouchDB() *multiNodeCouchDB {
	return &multiNodeCouchDB{restartByNode: map[string]time.Time{}}
}

func (m *multiNodeCouchDB) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/_membership", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"cluster_nodes": []string{"node1", "node2", "node3"}})
	})
	for _, node := range []string{"node1", "node2", "node3"} {
		node := node
		mux.HandleFunc(fmt.Sprintf("/_node/%s/_config/jwt_keys", node), func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		})
		mux.HandleFunc(fmt.Sprintf("/_node/%s/_config/jwt_keys/", node), func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc(fmt.Sprintf("/_node/%s/_restart", node), func(w http.ResponseWriter, _ *http.Request) {
			m.mu.Lock()
			now := time.Now()
			m.restartTimes = append(m.restartTimes, now)
			m.restartByNode[node] = now
			m.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		})
	}
	return mux
}

func TestDistributeCluster_StaggersRestarts(t *testing.T) {
	orig := RestartStagger
	RestartStagger = 30 * time.Millisecond
	defer func() { RestartStagger = orig }()

	m := newMultiNodeCouchDB()
	srv := httptest.NewServer(m.handler())
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	store := status.NewStore()

	outcomes, err := DistributeCluster(context.Background(), c, srv.URL, keys.Set{"rsa:k1": "pem1"}, NewRestartCounter(), store)
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.RestartRequested)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.restartTimes, 3)

	// Sort-independent check: every pair of restarts is separated by at
	// least one stagger unit, since counter values are 1..3.
	sorted := append([]time.Time{}, m.restartTimes...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			diff := sorted[j].Sub(sorted[i])
			if diff < 0 {
				diff = -diff
			}
			assert.GreaterOrEqual(t, diff, RestartStagger-5*time.Millisecond)
		}
	}
}

func TestDistributeCluster_MembershipFailureIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	store := status.NewStore()

	_, err := DistributeCluster(context.Background(), c, srv.URL, keys.Set{"rsa:k1": "pem1"}, NewRestartCounter(), store)
	assert.Error(t, err)
}
