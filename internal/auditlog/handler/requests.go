package handler

// DecryptRequest carries the recorded encrypted payload to recover.
type DecryptRequest struct {
	EncryptedHex string `json:"encryptedHex"`
}
