package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Sats is an amount denominated in the base settlement unit.
type Sats int64

// TokenId is the hex encoding of a 32-byte punk identifier.
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToLower() TokenId {
	return TokenId(strings.ToLower(string(i)))
}

// Digest returns sha256(tokenId), the message the mint gate signs.
func (i TokenId) Digest() []byte {
	sum := sha256.Sum256([]byte(i.ToLower()))
	return sum[:]
}

func (i TokenId) Validate() error {
	if len(i) != 64 {
		return ErrInvalidTokenId
	}
	if _, err := hex.DecodeString(string(i)); err != nil {
		return ErrInvalidTokenId
	}
	return nil
}

// PubKey is a hex-encoded secp256k1 public key identifying a user.
type PubKey string

func (p PubKey) ToLower() PubKey {
	return PubKey(strings.ToLower(string(p)))
}

func (p PubKey) IsEmpty() bool {
	return len(p) == 0
}

func (p PubKey) Equals(o PubKey) bool {
	return p.ToLower() == o.ToLower()
}

func (p PubKey) Validate() error {
	if len(p) == 0 || len(p) > 130 {
		return ErrInvalidPubKey
	}
	if _, err := hex.DecodeString(string(p)); err != nil {
		return ErrInvalidPubKey
	}
	return nil
}

// ArkAddress is an off-chain settlement address of the custodial wallet
// network. Treated as opaque.
type ArkAddress string

func (a ArkAddress) IsEmpty() bool {
	return len(a) == 0
}

// TxRef is an opaque settlement transaction reference, recorded for audit.
type TxRef string

// UnixTime is a unix timestamp in seconds.
type UnixTime int64

func Now() UnixTime {
	return UnixTime(time.Now().Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)
