package clients

const (
	// -----------------------------
	// CONNECTION / KEY
	// -----------------------------
	ErrRPCDial       = "rpc_dial_failed"
	ErrInvalidKey    = "invalid_private_key"
	ErrChainIDFailed = "chain_id_query_failed"

	// -----------------------------
	// QUERIES
	// -----------------------------
	ErrBalanceFailed  = "balance_query_failed"
	ErrGasPriceFailed = "gas_price_query_failed"
	ErrNonceFailed    = "nonce_query_failed"

	// -----------------------------
	// SUBMISSION
	// -----------------------------
	ErrSignFailed         = "transaction_sign_failed"
	ErrSendFailed         = "transaction_send_failed"
	ErrConfirmationFailed = "transaction_confirmation_failed"
)
