package math

import (
	"math"
)

// TradingDaysPerYear is the annualisation constant applied to per-step
// return statistics
const TradingDaysPerYear = 252

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}

// CalculatePercentageGainOrLoss returns the percentage rise over a certain
// period
func CalculatePercentageGainOrLoss(priceNow, priceThen float64) float64 {
	if priceThen == 0 {
		return 0
	}
	return (priceNow - priceThen) / priceThen * 100
}

// SimpleReturns converts a value series into per-step simple returns.
// A zero prior value yields a zero return for that step.
func SimpleReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns[i-1] = (values[i] - values[i-1]) / values[i-1]
	}
	return returns
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticAverage(values)
	diffs := make([]float64, len(values))
	for x := range values {
		diffs[x] = math.Pow(values[x]-avg, 2)
	}
	return math.Sqrt(ArithmeticAverage(diffs))
}

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// CalculateAnnualisedSharpeRatio returns the mean of the per-step returns
// divided by their population standard deviation, scaled by the square root
// of the supplied periods per year. Degenerate series report 0
func CalculateAnnualisedSharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	stdDev := PopulationStandardDeviation(returns)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	sharpe := ArithmeticAverage(returns) / stdDev * math.Sqrt(periodsPerYear)
	if math.IsNaN(sharpe) || math.IsInf(sharpe, 0) {
		return 0
	}
	return sharpe
}

// MaxDrawdown walks a value series tracking the running peak and returns the
// largest peak-to-trough decline along with its percentage of the peak at
// that point
func MaxDrawdown(values []float64) (amount, percent float64) {
	if len(values) == 0 {
		return 0, 0
	}
	peak := values[0]
	for i := range values {
		if values[i] > peak {
			peak = values[i]
		}
		drawdown := peak - values[i]
		if drawdown > amount {
			amount = drawdown
			if peak != 0 {
				percent = drawdown / peak * 100
			}
		}
	}
	return amount, percent
}
