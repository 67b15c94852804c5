// Package certconv converts the x5c certificate entries carried in a JWK
// into the single-line, backslash-escaped PEM strings CouchDB's
// jwt_keys configuration expects.
package certconv

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedAlgorithm is returned when alg is neither an RS* nor an ES*
// family algorithm.
var ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

// ErrCertificateParse is returned when the x5c entry cannot be decoded as a
// base64 DER-encoded X.509 certificate.
var ErrCertificateParse = errors.New("certificate parse error")

// CertToPEM converts a single base64-encoded x5c certificate entry into the
// single-line PEM representation (literal "\n" separators) that CouchDB's
// jwt_keys config value expects.
//
// Only the leaf certificate (the first x5c entry) is ever considered by
// callers of this function; trailing chain certificates are intentionally
// ignored.
func CertToPEM(x5cEntry, alg string) (string, error) {
	der, err := base64.StdEncoding.DecodeString(x5cEntry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCertificateParse, err)
	}

	wrapped := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if wrapped == nil {
		return "", fmt.Errorf("%w: could not wrap certificate bytes", ErrCertificateParse)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCertificateParse, err)
	}

	var block *pem.Block
	switch {
	case strings.HasPrefix(alg, "RS"):
		block, err = rsaPublicKeyBlock(cert)
	case strings.HasPrefix(alg, "ES"):
		block, err = ecdsaPublicKeyBlock(cert)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCertificateParse, err)
	}

	multiline := pem.EncodeToMemory(block)
	return toSingleLine(multiline), nil
}

func rsaPublicKeyBlock(cert *x509.Certificate) (*pem.Block, error) {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate public key is not RSA")
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &pem.Block{Type: "PUBLIC KEY", Bytes: der}, nil
}

func ecdsaPublicKeyBlock(cert *x509.Certificate) (*pem.Block, error) {
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate public key is not ECDSA")
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &pem.Block{Type: "PUBLIC KEY", Bytes: der}, nil
}

// toSingleLine replaces raw newlines with the literal two-character
// sequence "\n" so the PEM can travel as a single JSON string value.
func toSingleLine(pemBytes []byte) string {
	s := strings.TrimRight(string(pemBytes), "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
