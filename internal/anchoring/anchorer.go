package anchoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"leicca/pkg/platform/sentinel"
)

// ErrKeyUnavailable reports that the wallet holds no usable decryption key
// for the payload. Distinct from a corrupted payload: the ciphertext may be
// intact but this process cannot open it.
var ErrKeyUnavailable = errors.New("decryption key unavailable")

// Anchorer is the boundary to the external wallet collaborator that encrypts
// capsule bytes, broadcasts anchoring transactions and decrypts payloads.
type Anchorer interface {
	Encrypt(ctx context.Context, payload []byte) (encryptedHex string, err error)
	Submit(ctx context.Context, encryptedHex string, tags PublicTags) (txid string, err error)
	Decrypt(ctx context.Context, encryptedHex string) ([]byte, error)
}

// WalletAnchorer talks to the wallet service over HTTP. The wallet key is
// sent per request; the wallet never learns capsule semantics, only bytes.
type WalletAnchorer struct {
	baseURL   string
	walletKey string
	basket    string
	client    *http.Client
}

// NewWalletAnchorer creates an Anchorer against the given wallet service.
func NewWalletAnchorer(baseURL, walletKey, basket string, client *http.Client) *WalletAnchorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &WalletAnchorer{baseURL: baseURL, walletKey: walletKey, basket: basket, client: client}
}

func (a *WalletAnchorer) Encrypt(ctx context.Context, payload []byte) (string, error) {
	var resp struct {
		EncryptedHex string `json:"encryptedHex"`
	}
	err := a.post(ctx, "/encrypt", map[string]any{"payload": payload}, &resp)
	if err != nil {
		return "", err
	}
	if resp.EncryptedHex == "" {
		return "", fmt.Errorf("%w: wallet returned empty ciphertext", sentinel.ErrUnavailable)
	}
	return resp.EncryptedHex, nil
}

func (a *WalletAnchorer) Submit(ctx context.Context, encryptedHex string, tags PublicTags) (string, error) {
	var resp struct {
		TxID string `json:"txid"`
	}
	err := a.post(ctx, "/broadcast", map[string]any{
		"encryptedHex": encryptedHex,
		"basket":       a.basket,
		"tags":         tags,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.TxID == "" {
		return "", fmt.Errorf("%w: wallet returned no txid", sentinel.ErrUnavailable)
	}
	return resp.TxID, nil
}

func (a *WalletAnchorer) Decrypt(ctx context.Context, encryptedHex string) ([]byte, error) {
	var resp struct {
		Payload []byte `json:"payload"`
	}
	err := a.post(ctx, "/decrypt", map[string]any{"encryptedHex": encryptedHex}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (a *WalletAnchorer) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.walletKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wallet request: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read wallet response: %v", sentinel.ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: wallet rejected key", ErrKeyUnavailable)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("wallet rejected payload: %s", data)
	default:
		return fmt.Errorf("%w: wallet returned status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}
