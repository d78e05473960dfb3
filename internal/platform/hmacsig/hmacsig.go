// Package hmacsig signs and verifies webhook request bodies with a shared
// secret using the "algo=hex" header format code hosts emit.
package hmacsig

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strings"
)

const (
	// HeaderSHA256 carries "sha256=<hex>" signatures.
	HeaderSHA256 = "X-Hub-Signature-256"
	// HeaderSHA1 carries legacy "sha1=<hex>" signatures.
	HeaderSHA1 = "X-Hub-Signature"

	// DefaultMaxBodyBytes bounds the body buffered for verification.
	DefaultMaxBodyBytes int64 = 1 << 20
)

var (
	// ErrMissingSignature reports a request without any signature header.
	ErrMissingSignature = errors.New("signature is missing")
	// ErrMalformedSignature reports a header that is not "algo=hex".
	ErrMalformedSignature = errors.New("signature is malformed")
	// ErrSignatureMismatch reports a signature that does not match the body.
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Verifier checks request signatures against a shared secret.
type Verifier struct {
	secret      []byte
	acceptSHA1  bool
	maxBodySize int64
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLegacySHA1 controls whether "sha1=" signatures are accepted.
func WithLegacySHA1(accept bool) Option {
	return func(v *Verifier) { v.acceptSHA1 = accept }
}

// WithMaxBodyBytes bounds how much of a request body is read.
func WithMaxBodyBytes(limit int64) Option {
	return func(v *Verifier) {
		if limit > 0 {
			v.maxBodySize = limit
		}
	}
}

// NewVerifier constructs a verifier; legacy SHA-1 signatures are accepted by
// default.
func NewVerifier(secret []byte, opts ...Option) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("hmac secret is required")
	}
	v := &Verifier{
		secret:      append([]byte(nil), secret...),
		acceptSHA1:  true,
		maxBodySize: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Sign returns the "sha256=<hex>" signature of body.
func Sign(secret, body []byte) string {
	return "sha256=" + digestHex(sha256.New, secret, body)
}

// SignSHA1 returns the legacy "sha1=<hex>" signature of body.
func SignSHA1(secret, body []byte) string {
	return "sha1=" + digestHex(sha1.New, secret, body)
}

// Verify checks body against the first present signature, preferring
// SHA-256 over the legacy header.
func (v *Verifier) Verify(body []byte, header http.Header) error {
	if v == nil {
		return fmt.Errorf("hmac verifier is not configured")
	}
	if sig := strings.TrimSpace(header.Get(HeaderSHA256)); sig != "" {
		return v.verify(body, sig)
	}
	if sig := strings.TrimSpace(header.Get(HeaderSHA1)); sig != "" && v.acceptSHA1 {
		return v.verify(body, sig)
	}
	return ErrMissingSignature
}

func (v *Verifier) verify(body []byte, signature string) error {
	algo, value, ok := strings.Cut(signature, "=")
	if !ok || value == "" {
		return ErrMalformedSignature
	}
	provided, err := hex.DecodeString(value)
	if err != nil {
		return ErrMalformedSignature
	}
	var newHash func() hash.Hash
	switch strings.ToLower(algo) {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		if !v.acceptSHA1 {
			return ErrMalformedSignature
		}
		newHash = sha1.New
	default:
		return ErrMalformedSignature
	}
	mac := hmac.New(newHash, v.secret)
	_, _ = mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrSignatureMismatch
	}
	return nil
}

// Middleware rejects requests whose body signature does not verify with 401
// and restores the body for next.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, v.maxBodySize+1))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if int64(len(body)) > v.maxBodySize {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		if err := v.Verify(body, r.Header); err != nil {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func digestHex(newHash func() hash.Hash, secret, body []byte) string {
	mac := hmac.New(newHash, secret)
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
