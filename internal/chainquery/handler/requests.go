package handler

// TxRequest identifies a transaction for proof and status lookups.
type TxRequest struct {
	TxID string `json:"txid"`
}
