package solana

import "context"

// Well-known program and mint addresses.
const (
	TokenProgramID     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	WrappedSOLMint     = "So11111111111111111111111111111111111111112"
)

// TokenProgramIDs lists the programs that own fungible token accounts.
var TokenProgramIDs = []string{TokenProgramID, Token2022ProgramID}

// LamportsPerSOL converts lamports to SOL.
const LamportsPerSOL = 1_000_000_000

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetBalance returns the native balance of an account in lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetTokenAccountsByOwner returns the parsed SPL token accounts owned by address.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error)
}

// TokenAccount is a parsed SPL token account.
type TokenAccount struct {
	Pubkey   string
	Mint     string
	Owner    string
	Amount   string // raw integer amount
	Decimals int
	UIAmount float64
}
