package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/leaderboard"
)

// PickEntry is one row of a pick leaderboard.
type PickEntry struct {
	Rank            int     `json:"rank"`
	Symbol          string  `json:"symbol"`
	Mint            string  `json:"mint"`
	Username        string  `json:"username"`
	CostBasisUSD    float64 `json:"cost_basis_usd"`
	CurrentPriceUSD float64 `json:"current_price_usd"`
	CurrentValueUSD float64 `json:"current_value_usd"`
	PnLUSD          float64 `json:"pnl_usd"`
}

// PickBoardResponse is the JSON body of the pick leaderboard.
type PickBoardResponse struct {
	ChatID     int64       `json:"chat_id"`
	UserID     int64       `json:"user_id"`
	NativeUSD  float64     `json:"native_usd"`
	RenderedAt int64       `json:"rendered_at"`
	Total      int         `json:"total"`
	Skipped    int         `json:"skipped"`
	Entries    []PickEntry `json:"entries"`
}

// WalletEntry is one row of a wallet leaderboard.
type WalletEntry struct {
	Rank          int     `json:"rank"`
	Username      string  `json:"username"`
	Wallet        string  `json:"wallet"`
	StartUSDValue float64 `json:"start_usd_value"`
	NetWorthUSD   float64 `json:"net_worth_usd"`
	PnLUSD        float64 `json:"pnl_usd"`
}

// WalletBoardResponse is the JSON body of the wallet leaderboard.
type WalletBoardResponse struct {
	ChatID     int64         `json:"chat_id"`
	NativeUSD  float64       `json:"native_usd"`
	RenderedAt int64         `json:"rendered_at"`
	Total      int           `json:"total"`
	Entries    []WalletEntry `json:"entries"`
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type leaderboardHandler struct {
	boards *leaderboard.Builder
	logger *zap.Logger
}

func (h *leaderboardHandler) picks(c *gin.Context) {
	chatID, ok := intParam(c, "chat")
	if !ok {
		return
	}
	userID, ok := intParam(c, "user")
	if !ok {
		return
	}

	board, err := h.boards.Picks(c.Request.Context(), chatID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := PickBoardResponse{
		ChatID:     board.ChatID,
		UserID:     board.UserID,
		NativeUSD:  board.NativeUSD,
		RenderedAt: board.RenderedAt,
		Total:      board.Total,
		Skipped:    board.Skipped,
		Entries:    make([]PickEntry, 0, len(board.Entries)),
	}
	for i, e := range board.Entries {
		resp.Entries = append(resp.Entries, PickEntry{
			Rank:            i + 1,
			Symbol:          e.Symbol,
			Mint:            e.Pick.MintAddress,
			Username:        e.Pick.Username,
			CostBasisUSD:    e.Pick.CostBasisUSD,
			CurrentPriceUSD: e.CurrentPriceUSD,
			CurrentValueUSD: e.CurrentValueUSD,
			PnLUSD:          e.PnLUSD,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *leaderboardHandler) wallets(c *gin.Context) {
	chatID, ok := intParam(c, "chat")
	if !ok {
		return
	}

	board, err := h.boards.Wallets(c.Request.Context(), chatID, nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := WalletBoardResponse{
		ChatID:     board.ChatID,
		NativeUSD:  board.NativeUSD,
		RenderedAt: board.RenderedAt,
		Total:      board.Total,
		Entries:    make([]WalletEntry, 0, len(board.Entries)),
	}
	for i, e := range board.Entries {
		resp.Entries = append(resp.Entries, WalletEntry{
			Rank:          i + 1,
			Username:      e.Wallet.Username,
			Wallet:        e.Wallet.WalletAddress,
			StartUSDValue: e.Wallet.StartUSDValue,
			NetWorthUSD:   e.NetWorthUSD,
			PnLUSD:        e.PnLUSD,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *leaderboardHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, leaderboard.ErrNoEntries), errors.Is(err, leaderboard.ErrNoPricedEntries):
		status = http.StatusNotFound
	case errors.Is(err, leaderboard.ErrPriceUnavailable):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("Leaderboard request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func intParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " id"})
		return 0, false
	}
	return v, true
}
