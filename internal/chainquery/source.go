package chainquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	dErrors "leicca/pkg/domain-errors"
	"leicca/pkg/platform/sentinel"
)

// Source is the boundary to the external chain-data collaborator. The
// MerkleProof contract distinguishes three states:
//
//   - (proof, nil): the transaction is mined and provable
//   - (nil, nil): the transaction exists but has not entered a block yet;
//     this is a normal, expected state, not an error
//   - (nil, err): unknown transaction (sentinel.ErrNotFound) or a
//     network/service failure (sentinel.ErrUnavailable, wrapped)
type Source interface {
	MerkleProof(ctx context.Context, txid string) (*MerkleProof, error)
	CurrentHeight(ctx context.Context) (int64, error)
}

// HTTPSource queries a REST chain-data service.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a Source over the given base URL.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{baseURL: baseURL, client: client}
}

func (s *HTTPSource) MerkleProof(ctx context.Context, txid string) (*MerkleProof, error) {
	body, status, err := s.get(ctx, fmt.Sprintf("%s/tx/%s/proof", s.baseURL, txid))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch merkle proof: %v", sentinel.ErrUnavailable, err)
	}

	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: transaction %s", sentinel.ErrNotFound, txid)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: chain source returned status %d", sentinel.ErrUnavailable, status)
	}

	// The source answers 200 with a JSON null while the transaction sits in
	// the mempool. Absent proof is not a failure.
	if isJSONNull(body) {
		return nil, nil
	}

	var proof MerkleProof
	if err := json.Unmarshal(body, &proof); err != nil {
		return nil, fmt.Errorf("%w: decode merkle proof: %v", sentinel.ErrUnavailable, err)
	}
	return &proof, nil
}

func (s *HTTPSource) CurrentHeight(ctx context.Context) (int64, error) {
	body, status, err := s.get(ctx, s.baseURL+"/chain/height")
	if err != nil {
		return 0, fmt.Errorf("%w: fetch chain height: %v", sentinel.ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: chain source returned status %d", sentinel.ErrUnavailable, status)
	}

	var resp struct {
		Height int64 `json:"height"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: decode chain height: %v", sentinel.ErrUnavailable, err)
	}
	return resp.Height, nil
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func isJSONNull(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return trimmed == "null" || trimmed == ""
}

// ValidateTxID checks the shape of a transaction id: 64 lowercase hex
// characters. Malformed ids are caller faults and never reach the network.
func ValidateTxID(txid string) error {
	if len(txid) != 64 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "txid must be 64 hex characters, got %d", len(txid))
	}
	for _, c := range txid {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "txid must be lowercase hex")
		}
	}
	return nil
}
