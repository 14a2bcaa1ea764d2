// internal/storage/models/trade.go
package models

const (
	TradeSideBuy  = "buy"
	TradeSideSell = "sell"
)

// Trade records one committed buy or sell against a token's curve.
type Trade struct {
	BaseModel
	TokenID      string  `gorm:"index;not null;type:varchar(44)"`
	Trader       string  `gorm:"index;not null;type:varchar(44)"`
	Side         string  `gorm:"not null;type:varchar(4)"`
	SolAmount    uint64  `gorm:"not null"`
	TokenAmount  uint64  `gorm:"not null"`
	Fee          uint64  `gorm:"not null"`
	SpotPrice    float64 `gorm:"type:decimal(20,9)"`
	SolReserve   uint64  `gorm:"not null"` // post-trade
	TokenReserve uint64  `gorm:"not null"` // post-trade
}
