package domain

// TransactionKind labels the direction of a pool transaction.
type TransactionKind string

const (
	TxSwapBuy   TransactionKind = "buy"
	TxSwapSell  TransactionKind = "sell"
	TxAddLiq    TransactionKind = "add_liquidity"
	TxRemoveLiq TransactionKind = "remove_liquidity"
)

// PoolTransaction is a single observed transaction on a pool, kept in
// the bounded per-pool history.
type PoolTransaction struct {
	Signature string
	PoolID    string
	Kind      TransactionKind
	AmountUSD float64
	Wallet    string
	BlockTime int64 // Unix timestamp in milliseconds
}
