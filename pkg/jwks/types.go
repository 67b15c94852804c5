// Package jwks discovers and fetches an OpenID Connect identity provider's
// JSON Web Key Set.
package jwks

// DiscoveryDocument is the subset of an OIDC .well-known/openid-configuration
// document this daemon cares about.
type DiscoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// JWK is a single JSON Web Key as advertised by a JWKS document. Field
// names mirror the JWK spec (RFC 7517) rather than any CouchDB-specific
// naming.
type JWK struct {
	Kty string   `json:"kty"`
	Kid string   `json:"kid"`
	Alg string   `json:"alg"`
	X5c []string `json:"x5c"`
}

// Document is a JSON Web Key Set document.
type Document struct {
	Keys []JWK `json:"keys"`
}
