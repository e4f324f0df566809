package signer

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos-style addresses are defined over RIPEMD-160
)

// AddressPrefix is the bech32 human-readable part of Gonka requester addresses.
const AddressPrefix = "gonka"

// Signer produces ECDSA-SHA256 signatures over secp256k1 for requests sent
// to the Gonka inference network.
type Signer struct {
	key *ecdsa.PrivateKey
}

// New creates a Signer from a hex-encoded private key (0x prefix optional).
func New(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("signer: invalid hex key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("signer: key must be 32 bytes, got %d", len(raw))
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign returns (base64-encoded signature, timestamp in nanoseconds).
//
// The signed message is SHA256(hex(SHA256(payload)) + timestamp + transferAddress).
// crypto.Sign uses an RFC 6979 nonce and a low-S value, so the r||s pair
// is deterministic for a given timestamp.
func (s *Signer) Sign(payload []byte, transferAddress string) (string, int64, error) {
	ts := time.Now().UnixNano()
	sig, err := s.signAt(payload, transferAddress, ts)
	if err != nil {
		return "", 0, err
	}
	return sig, ts, nil
}

func (s *Signer) signAt(payload []byte, transferAddress string, ts int64) (string, error) {
	digest := Digest(payload, transferAddress, ts)
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return "", fmt.Errorf("signer: sign: %w", err)
	}
	// Drop the recovery id; the network expects the 64-byte r||s form.
	return base64.StdEncoding.EncodeToString(sig[:64]), nil
}

// Digest returns the 32-byte hash that Sign signs.
func Digest(payload []byte, transferAddress string, ts int64) []byte {
	payloadHash := sha256.Sum256(payload)
	input := hex.EncodeToString(payloadHash[:]) + fmt.Sprintf("%d", ts) + transferAddress
	sum := sha256.Sum256([]byte(input))
	return sum[:]
}

// PublicKey returns the compressed 33-byte public key.
func (s *Signer) PublicKey() []byte {
	return crypto.CompressPubkey(&s.key.PublicKey)
}

// Address derives the bech32 requester address for the key:
// bech32(AddressPrefix, RIPEMD160(SHA256(compressed pubkey))).
func (s *Signer) Address() (string, error) {
	sha := sha256.Sum256(s.PublicKey())
	h := ripemd160.New()
	h.Write(sha[:])
	data, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("signer: address: %w", err)
	}
	addr, err := bech32.Encode(AddressPrefix, data)
	if err != nil {
		return "", fmt.Errorf("signer: address: %w", err)
	}
	return addr, nil
}
