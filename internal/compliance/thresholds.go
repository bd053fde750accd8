package compliance

import (
	"math/big"

	"github.com/shopspring/decimal"

	"umbra/pkg/domain"
)

// USDConverter prices a smallest-unit amount in USD.
type USDConverter interface {
	ToUSD(amount *big.Int) decimal.Decimal
}

// FixedRateConverter divides by a constant. It stands in for a price feed
// and its result carries no market meaning.
type FixedRateConverter struct {
	divisor decimal.Decimal
}

func NewFixedRateConverter(divisor decimal.Decimal) *FixedRateConverter {
	if divisor.Sign() <= 0 {
		divisor = decimal.New(1, 9)
	}
	return &FixedRateConverter{divisor: divisor}
}

func (c *FixedRateConverter) ToUSD(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, 0).Div(c.divisor)
}

// CheckThreshold compares amount against the KYC limit of period. An empty
// period means daily.
func (m *Manager) CheckThreshold(amount *big.Int, kyc domain.KYCLevel, period domain.LimitPeriod) domain.ThresholdCheck {
	threshold := kyc.DailyLimit
	if period == domain.PeriodMonthly {
		threshold = kyc.MonthlyLimit
	}
	amountUSD := m.cfg.Converter.ToUSD(amount)

	remaining := threshold.Sub(amountUSD)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return domain.ThresholdCheck{
		Allowed:     kyc.Verified && amountUSD.LessThanOrEqual(threshold),
		Remaining:   remaining,
		Threshold:   threshold,
		RequiresKYC: !kyc.Verified || kyc.Level == 0,
	}
}

// GetRequiredKYCLevel maps a USD amount onto the tier table; amounts above
// the last bound need the top level.
func (m *Manager) GetRequiredKYCLevel(amountUSD decimal.Decimal) int {
	for level, bound := range m.cfg.KYCTiers {
		if amountUSD.LessThanOrEqual(bound) {
			return level
		}
	}
	return len(m.cfg.KYCTiers)
}

// ValidateKYCForTransaction applies the unverified cap, or the daily limit
// once verified.
func (m *Manager) ValidateKYCForTransaction(amount *big.Int, kyc domain.KYCLevel) bool {
	amountUSD := m.cfg.Converter.ToUSD(amount)
	if !kyc.Verified {
		return amountUSD.LessThanOrEqual(m.cfg.UnverifiedLimit)
	}
	return amountUSD.LessThanOrEqual(kyc.DailyLimit)
}

// ToUSD exposes the configured conversion.
func (m *Manager) ToUSD(amount *big.Int) decimal.Decimal {
	return m.cfg.Converter.ToUSD(amount)
}
