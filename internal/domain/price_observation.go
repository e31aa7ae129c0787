package domain

// PriceObservation kinds.
const (
	ObservationNative = "native" // native coin in USD
	ObservationToken  = "token"  // token in native coin
)

// PriceObservation is one price used in a leaderboard render.
// Corresponds to price_observations table in ClickHouse. Append-only audit trail.
type PriceObservation struct {
	ObservedAt  int64   // render timestamp (ms)
	ChatID      int64   // chat scope of the render
	Board       string  // "picks" | "wallets"
	Kind        string  // ObservationNative | ObservationToken
	Mint        string  // empty for native
	PriceNative float64 // token price in native coin (0 for native)
	NativeUSD   float64 // native coin price in USD used for the render
}
