// Package reporting flattens leaderboards into operator reports: terminal
// tables, CSV and Markdown.
package reporting

import (
	"fmt"
	"strconv"
	"time"

	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/share"
)

// Report is a leaderboard as printable rows.
type Report struct {
	Title       string
	ChatID      int64
	GeneratedAt time.Time
	NativeUSD   float64
	Header      []string
	Rows        [][]string
	Summary     string
}

// FromPickBoard builds a report from a pick leaderboard.
func FromPickBoard(b *leaderboard.PickBoard) *Report {
	r := &Report{
		Title:       fmt.Sprintf("Picks of user %d", b.UserID),
		ChatID:      b.ChatID,
		GeneratedAt: time.UnixMilli(b.RenderedAt).UTC(),
		NativeUSD:   b.NativeUSD,
		Header:      []string{"#", "Symbol", "Mint", "Entry USD", "Price USD", "Value USD", "PnL"},
		Summary:     fmt.Sprintf("%d of %d picks priced", b.Total-b.Skipped, b.Total),
	}
	for i, e := range b.Entries {
		r.Rows = append(r.Rows, []string{
			strconv.Itoa(i + 1),
			e.Symbol,
			e.Pick.MintAddress,
			fmt.Sprintf("%.2f", e.Pick.CostBasisUSD),
			fmt.Sprintf("%.8f", e.CurrentPriceUSD),
			fmt.Sprintf("%.2f", e.CurrentValueUSD),
			share.SignedUSD(e.PnLUSD),
		})
	}
	return r
}

// FromWalletBoard builds a report from a wallet leaderboard.
func FromWalletBoard(b *leaderboard.WalletBoard) *Report {
	r := &Report{
		Title:       "Sniper Bowl",
		ChatID:      b.ChatID,
		GeneratedAt: time.UnixMilli(b.RenderedAt).UTC(),
		NativeUSD:   b.NativeUSD,
		Header:      []string{"#", "User", "Wallet", "Start USD", "Net Worth USD", "PnL"},
		Summary:     fmt.Sprintf("%d of %d wallets shown", len(b.Entries), b.Total),
	}
	for i, e := range b.Entries {
		r.Rows = append(r.Rows, []string{
			strconv.Itoa(i + 1),
			e.Wallet.Username,
			e.Wallet.WalletAddress,
			fmt.Sprintf("%.2f", e.Wallet.StartUSDValue),
			fmt.Sprintf("%.2f", e.NetWorthUSD),
			share.SignedUSD(e.PnLUSD),
		})
	}
	return r
}
