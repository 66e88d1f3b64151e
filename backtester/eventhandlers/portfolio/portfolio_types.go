package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when capital cannot cover the cost of
	// an order including commission. No partial fills are made
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPositionAlreadyOpen is returned when opening while a position is held
	ErrPositionAlreadyOpen = errors.New("position already open")
	// ErrNoOpenPosition is returned when closing while flat
	ErrNoOpenPosition = errors.New("no open position")

	errInvalidPrice          = errors.New("price must be a positive number")
	errInvalidInitialCapital = errors.New("initial capital must be greater than zero")
	errInvalidRate           = errors.New("rate must be between 0 and 1")
	errInvalidSide           = errors.New("invalid position side")
)

// Side is the direction of a position
type Side string

// Position sides
const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Position is the single open position of a run. TotalCost is the cost
// basis including the entry commission and is fixed at open
type Position struct {
	Side       Side
	Size       decimal.Decimal
	EntryPrice decimal.Decimal
	EntryTime  time.Time
	EntryIndex int
	TotalCost  decimal.Decimal
	Meta       any
}

// Trade is an immutable closed round trip
type Trade struct {
	EntryTime  time.Time `json:"entryTime"`
	ExitTime   time.Time `json:"exitTime"`
	Side       Side      `json:"side"`
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	PnL        float64   `json:"pnl"`
	PnLPercent float64   `json:"pnlPercent"`
	EntryIndex int       `json:"entryIndex"`
	ExitIndex  int       `json:"exitIndex"`
	Meta       any       `json:"meta,omitempty"`
}

// Portfolio tracks capital, the open position and closed trades of one run
type Portfolio struct {
	initialCapital decimal.Decimal
	capital        decimal.Decimal
	commissionRate decimal.Decimal
	slippage       decimal.Decimal
	position       *Position
	trades         []Trade
}
