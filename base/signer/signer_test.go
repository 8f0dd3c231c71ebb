package signer

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/arkpunks/goapi/domain"
)

func TestSignAndVerify(t *testing.T) {
	req := require.New(t)

	priv, err := crypto.GenerateKey()
	req.NoError(err)
	s := &Signer{priv: priv}

	tokenId := domain.TokenId("c67e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
	digest := tokenId.Digest()

	sig, err := s.Sign(digest)
	req.NoError(err)

	req.True(Verify(s.PubKey(), digest, sig))

	// wrong digest
	other := domain.TokenId("aa7e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2")
	req.False(Verify(s.PubKey(), other.Digest(), sig))

	// x-only form of the same key verifies too
	xonly := domain.PubKey(hex.EncodeToString(crypto.CompressPubkey(&priv.PublicKey))[2:])
	req.True(Verify(xonly, digest, sig))
}

func TestVerifyMalformed(t *testing.T) {
	req := require.New(t)

	priv, err := crypto.GenerateKey()
	req.NoError(err)
	s := &Signer{priv: priv}
	digest := domain.TokenId("c67e1a33e9ab5d773a4f1cc383bdf4d1b1c778f51a86b6bd9cfd40cf05af1ef2").Digest()

	req.False(Verify(s.PubKey(), digest, "zz"))
	req.False(Verify(s.PubKey(), digest, "abcd"))
	req.False(Verify(domain.PubKey("00"), digest, ""))
}

func TestNewFromHex(t *testing.T) {
	req := require.New(t)

	priv, err := crypto.GenerateKey()
	req.NoError(err)
	s, err := NewFromHex(hex.EncodeToString(crypto.FromECDSA(priv)))
	req.NoError(err)
	req.Equal(domain.PubKey(hex.EncodeToString(crypto.CompressPubkey(&priv.PublicKey))), s.PubKey())

	_, err = NewFromHex("not-hex")
	req.Error(err)
}
