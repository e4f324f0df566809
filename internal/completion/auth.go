package completion

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gonkalabs/reviewsense/internal/wallet"
)

// Authorizer attaches credentials to an outgoing request. payload is the
// exact request body (nil for GET).
type Authorizer interface {
	Authorize(req *http.Request, payload []byte) error
}

// BearerToken authorizes with a static API key.
type BearerToken string

func (t BearerToken) Authorize(req *http.Request, _ []byte) error {
	if t == "" {
		return errors.New("api key required")
	}
	req.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// SignedRequests signs every request body with the next wallet of the pool,
// as required by Gonka transfer-agent nodes.
type SignedRequests struct {
	Pool            *wallet.Pool
	TransferAddress string // bech32 address of the transfer agent serving BaseURL
}

func (s *SignedRequests) Authorize(req *http.Request, payload []byte) error {
	w := s.Pool.Next()
	sig, ts, err := w.Signer.Sign(payload, s.TransferAddress)
	if err != nil {
		return fmt.Errorf("wallet %s: %w", w.Address, err)
	}
	req.Header.Set("Authorization", sig)
	req.Header.Set("X-Requester-Address", w.Address)
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	return nil
}
