package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// New returns a flat portfolio holding initialCapital. commission and
// slippage are fractions of notional value and price respectively
func New(initialCapital, commission, slippage float64) (*Portfolio, error) {
	if initialCapital <= 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		return nil, fmt.Errorf("%w: %v", errInvalidInitialCapital, initialCapital)
	}
	for _, rate := range []float64{commission, slippage} {
		if rate < 0 || rate >= 1 || math.IsNaN(rate) {
			return nil, fmt.Errorf("%w: %v", errInvalidRate, rate)
		}
	}
	capital := decimal.NewFromFloat(initialCapital)
	return &Portfolio{
		initialCapital: capital,
		capital:        capital,
		commissionRate: decimal.NewFromFloat(commission),
		slippage:       decimal.NewFromFloat(slippage),
	}, nil
}

// Open opens a position at close adjusted by slippage, against the trader.
// Commission is charged immediately and capital must cover the full cost
func (p *Portfolio) Open(side Side, closePrice, size float64, t time.Time, index int, meta any) error {
	if p.position != nil {
		return ErrPositionAlreadyOpen
	}
	if !validPrice(closePrice) || !validPrice(size) {
		return fmt.Errorf("%w: price %v size %v", errInvalidPrice, closePrice, size)
	}
	c := decimal.NewFromFloat(closePrice)
	var entryPrice decimal.Decimal
	switch side {
	case Long:
		entryPrice = c.Mul(decimal.NewFromInt(1).Add(p.slippage))
	case Short:
		entryPrice = c.Mul(decimal.NewFromInt(1).Sub(p.slippage))
	default:
		return fmt.Errorf("%w %q", errInvalidSide, side)
	}
	amount := decimal.NewFromFloat(size)
	cost := entryPrice.Mul(amount)
	totalCost := cost.Add(cost.Mul(p.commissionRate))
	if totalCost.GreaterThan(p.capital) {
		return fmt.Errorf("%w: need %v have %v", ErrInsufficientFunds, totalCost.Round(2), p.capital.Round(2))
	}
	p.capital = p.capital.Sub(totalCost)
	p.position = &Position{
		Side:       side,
		Size:       amount,
		EntryPrice: entryPrice,
		EntryTime:  t,
		EntryIndex: index,
		TotalCost:  totalCost,
		Meta:       meta,
	}
	return nil
}

// Close closes the open position at close less slippage regardless of side
// and records the trade
func (p *Portfolio) Close(closePrice float64, t time.Time, index int) (Trade, error) {
	if p.position == nil {
		return Trade{}, ErrNoOpenPosition
	}
	if math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
		return Trade{}, fmt.Errorf("%w: %v", errInvalidPrice, closePrice)
	}
	pos := p.position
	exitPrice := decimal.NewFromFloat(closePrice).Mul(decimal.NewFromInt(1).Sub(p.slippage))
	revenue := exitPrice.Mul(pos.Size)
	netRevenue := revenue.Sub(revenue.Mul(p.commissionRate))

	var pnl decimal.Decimal
	if pos.Side == Short {
		pnl = pos.TotalCost.Sub(netRevenue)
	} else {
		pnl = netRevenue.Sub(pos.TotalCost)
	}
	var pnlPercent decimal.Decimal
	if !pos.TotalCost.IsZero() {
		pnlPercent = pnl.Div(pos.TotalCost).Mul(hundred)
	}
	// returns the cost basis plus realised pnl, equal to net revenue for longs
	p.capital = p.capital.Add(pos.TotalCost).Add(pnl)

	trade := Trade{
		EntryTime:  pos.EntryTime,
		ExitTime:   t,
		Side:       pos.Side,
		Size:       pos.Size.InexactFloat64(),
		EntryPrice: pos.EntryPrice.InexactFloat64(),
		ExitPrice:  exitPrice.InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
		PnLPercent: pnlPercent.InexactFloat64(),
		EntryIndex: pos.EntryIndex,
		ExitIndex:  index,
		Meta:       pos.Meta,
	}
	p.trades = append(p.trades, trade)
	p.position = nil
	return trade, nil
}

// Equity returns cash plus the marked to market value of the open position
func (p *Portfolio) Equity(closePrice float64) float64 {
	if p.position == nil {
		return p.capital.InexactFloat64()
	}
	return p.capital.Add(p.position.TotalCost).Add(p.UnrealisedPnL(closePrice)).InexactFloat64()
}

// UnrealisedPnL returns the open position's profit at closePrice
func (p *Portfolio) UnrealisedPnL(closePrice float64) decimal.Decimal {
	if p.position == nil || math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
		return decimal.Zero
	}
	diff := decimal.NewFromFloat(closePrice).Sub(p.position.EntryPrice)
	if p.position.Side == Short {
		diff = diff.Neg()
	}
	return diff.Mul(p.position.Size)
}

// Capital returns the current cash balance
func (p *Portfolio) Capital() float64 {
	return p.capital.InexactFloat64()
}

// InitialCapital returns the starting cash balance
func (p *Portfolio) InitialCapital() float64 {
	return p.initialCapital.InexactFloat64()
}

// Position returns a copy of the open position
func (p *Portfolio) Position() (Position, bool) {
	if p.position == nil {
		return Position{}, false
	}
	return *p.position, true
}

// HasPosition returns whether a position is open
func (p *Portfolio) HasPosition() bool {
	return p.position != nil
}

// Trades returns a copy of the closed trades
func (p *Portfolio) Trades() []Trade {
	resp := make([]Trade, len(p.trades))
	copy(resp, p.trades)
	return resp
}

func validPrice(f float64) bool {
	return f > 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}
