package domain

// WalletRegistration represents a contest wallet snapshot.
// Corresponds to wallets table. Unique on (chat_id, wallet_address) and (chat_id, user_id).
type WalletRegistration struct {
	ID            string  // surrogate key (uuid)
	ChatID        int64   // chat scope
	UserID        int64   // owning user
	Username      string  // display name at registration
	WalletAddress string  // base58 public key
	StartUSDValue float64 // net worth frozen at registration
	CreatedAt     int64   // record creation timestamp (ms)
}

// WalletValuation is a transient mark-to-market of a WalletRegistration.
type WalletValuation struct {
	Wallet      WalletRegistration
	NetWorthUSD float64
	PnLUSD      float64 // NetWorthUSD - StartUSDValue
}

// TokenHolding is a fungible token balance held by a wallet.
type TokenHolding struct {
	Mint   string
	Amount float64 // UI amount (decimals applied)
}
