package couchdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Membership(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_membership", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"cluster_nodes": []string{"node1", "node2"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	nodes, err := c.Membership(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"node1", "node2"}, nodes)
}

func TestClient_GetJWTKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_node/node1/_config/jwt_keys", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"rsa:k1": `-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----`})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	current, err := c.GetJWTKeys(context.Background(), "node1")
	require.NoError(t, err)
	assert.Contains(t, current, "rsa:k1")
}

func TestClient_PutJWTKey(t *testing.T) {
	var gotBody string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/_node/node1/_config/jwt_keys/rsa:k1", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	pem := `-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----`
	err := c.PutJWTKey(context.Background(), "node1", "rsa:k1", pem)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)

	var decoded string
	require.NoError(t, json.Unmarshal([]byte(gotBody), &decoded))
	assert.Equal(t, pem, decoded)
}

func TestClient_Restart(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		assert.Equal(t, "/_node/node1/_restart", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	err := c.Restart(context.Background(), "node1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.Membership(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
