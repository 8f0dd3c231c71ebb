// Package signer wraps secp256k1 detached signatures for the mint gate and
// for verifying mint events pulled off the broadcast log.
package signer

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"

	"github.com/arkpunks/goapi/domain"
)

type Signer struct {
	priv *ecdsa.PrivateKey
}

func NewFromHex(privHex string) (*Signer, error) {
	priv, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, xerrors.Errorf("parse signing key: %w", err)
	}
	return &Signer{priv: priv}, nil
}

// Sign produces a detached signature over the 32-byte digest, hex encoded.
// The recovery byte is stripped; verification only needs r||s.
func (s *Signer) Sign(digest []byte) (string, error) {
	sig, err := crypto.Sign(digest, s.priv)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig[:64]), nil
}

// PubKey returns the compressed public key, hex encoded.
func (s *Signer) PubKey() domain.PubKey {
	return domain.PubKey(hex.EncodeToString(crypto.CompressPubkey(&s.priv.PublicKey)))
}

// Verify checks a detached r||s signature over digest against pub. A 32-byte
// x-only key is tried under both compressed prefixes.
func Verify(pub domain.PubKey, digest []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) < 64 {
		return false
	}
	sig = sig[:64]

	pubBytes, err := hex.DecodeString(string(pub))
	if err != nil {
		return false
	}

	switch len(pubBytes) {
	case 33, 65:
		return crypto.VerifySignature(pubBytes, digest, sig)
	case 32:
		for _, prefix := range []byte{0x02, 0x03} {
			candidate := append([]byte{prefix}, pubBytes...)
			if crypto.VerifySignature(candidate, digest, sig) {
				return true
			}
		}
	}
	return false
}
