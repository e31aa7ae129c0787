package domain

// Pick represents a shilled token call tracked for PnL.
// Corresponds to picks table. Identity is (chat_id, mint_address).
type Pick struct {
	ID           string  // surrogate key (uuid)
	ChatID       int64   // chat scope
	UserID       int64   // user who shilled the token
	Username     string  // display name at shill time
	MintAddress  string  // token mint address
	CostBasisUSD float64 // fixed stake valued in USD at entry
	NumTokens    float64 // fixed stake / entry price in native coin
	CreatedAt    int64   // record creation timestamp (ms)
}

// PickValuation is a transient mark-to-market of a Pick.
type PickValuation struct {
	Pick            Pick
	Symbol          string
	CurrentPriceUSD float64 // token price in USD
	CurrentValueUSD float64 // NumTokens * CurrentPriceUSD
	PnLUSD          float64 // CurrentValueUSD - CostBasisUSD
}
