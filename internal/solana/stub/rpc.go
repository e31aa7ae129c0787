package stub

import (
	"context"
	"errors"
	"sync"

	"sniper-bowl-bot/internal/solana"
)

// ErrNotFound is returned when an account has no stubbed response.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
// Token accounts are keyed by owner and program.
type RPCClient struct {
	mu            sync.Mutex
	Balances      map[string]uint64
	TokenAccounts map[string]map[string][]solana.TokenAccount
	ProgramErrs   map[string]error
	Programs      []string
	Calls         int
}

var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:      make(map[string]uint64),
		TokenAccounts: make(map[string]map[string][]solana.TokenAccount),
		ProgramErrs:   make(map[string]error),
	}
}

// GetBalance returns the stubbed balance for address.
func (c *RPCClient) GetBalance(_ context.Context, address string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++

	lamports, ok := c.Balances[address]
	if !ok {
		return 0, ErrNotFound
	}
	return lamports, nil
}

// GetTokenAccountsByOwner returns the stubbed token accounts of owner under
// programID. A known owner with no accounts under programID gets an empty list.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, programID string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	c.Programs = append(c.Programs, programID)

	if err := c.ProgramErrs[programID]; err != nil {
		return nil, err
	}
	byProgram, ok := c.TokenAccounts[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return byProgram[programID], nil
}

// SetBalance stubs the lamport balance of address.
func (c *RPCClient) SetBalance(address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[address] = lamports
}

// AddTokenAccounts stubs SPL Token program accounts owned by owner.
func (c *RPCClient) AddTokenAccounts(owner string, accounts ...solana.TokenAccount) {
	c.AddProgramTokenAccounts(owner, solana.TokenProgramID, accounts...)
}

// AddProgramTokenAccounts stubs accounts owned by owner under programID.
func (c *RPCClient) AddProgramTokenAccounts(owner, programID string, accounts ...solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.TokenAccounts[owner] == nil {
		c.TokenAccounts[owner] = make(map[string][]solana.TokenAccount)
	}
	c.TokenAccounts[owner][programID] = append(c.TokenAccounts[owner][programID], accounts...)
}

// FailProgram makes every token account lookup under programID return err.
func (c *RPCClient) FailProgram(programID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ProgramErrs[programID] = err
}
