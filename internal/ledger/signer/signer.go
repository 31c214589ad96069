// Package signer provides the Signer interface the ledger client uses to
// authorize extrinsics, plus a deterministic local implementation driven
// by a SURI-style seed string (e.g. "//Alice") for development use.
package signer

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
)

// Signer authorizes an extrinsic payload on behalf of an account.
type Signer interface {
	AccountID() []byte
	Sign(payload []byte) ([]byte, error)
}

// local is a deterministic, non-production signer: the seed string is
// hashed into an ed25519 private key. It exists so the worker/requester
// binaries can run end to end against a dev chain without a real keyring.
type local struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// FromSURI derives a local signer from a seed-uri-like string. This is not
// a faithful sr25519/SURI implementation (no such library exists in this
// project's dependency surface) — it preserves the ergonomic of "one
// string names your signing identity" from the original configuration,
// nothing more.
func FromSURI(suri string) (Signer, error) {
	if suri == "" {
		return nil, fmt.Errorf("signer: empty SURI")
	}
	seed := sha256.Sum256([]byte(suri))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return &local{priv: priv, pub: pub}, nil
}

func (l *local) AccountID() []byte { return append([]byte(nil), l.pub...) }

func (l *local) Sign(payload []byte) ([]byte, error) {
	return ed25519.Sign(l.priv, payload), nil
}
