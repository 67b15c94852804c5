// Package keys assembles the unified KeySet the reconciler pushes into
// every CouchDB node, by fanning out JWKS discovery across all configured
// identity providers and converting every certificate-bound key to PEM.
package keys

import "strings"

// ID is a KeyId of the form "<kty-lowercase>:<kid>".
type ID string

// Set maps a KeyId to its single-line, backslash-escaped PEM value.
type Set map[ID]string

// NewID builds a KeyId from a JWK's kty/kid pair. kty defaults to "RSA"
// when absent, matching the identity providers observed in practice.
func NewID(kty, kid string) ID {
	if kty == "" {
		kty = "RSA"
	}
	return ID(strings.ToLower(kty) + ":" + kid)
}
