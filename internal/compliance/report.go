package compliance

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"umbra/pkg/domain"
)

// FlagRule decides whether a report transaction is flagged.
type FlagRule func(tx domain.ReportTransaction, amountUSD decimal.Decimal, kyc domain.KYCLevel) bool

// OverDailyLimit flags transactions larger than the KYC daily limit.
func OverDailyLimit(tx domain.ReportTransaction, amountUSD decimal.Decimal, kyc domain.KYCLevel) bool {
	return amountUSD.GreaterThan(kyc.DailyLimit)
}

// GenerateComplianceReport aggregates transactions as supplied; it does not
// filter them by period. A nil kyc uses the configured default snapshot.
func (m *Manager) GenerateComplianceReport(address string, start, end time.Time, transactions []domain.ReportTransaction, kyc *domain.KYCLevel) domain.ComplianceReport {
	snapshot := m.cfg.DefaultKYC
	if kyc != nil {
		snapshot = *kyc
	}

	total := new(big.Int)
	largest := new(big.Int)
	flagged := []string{}
	for _, tx := range transactions {
		if tx.Amount == nil {
			continue
		}
		total.Add(total, tx.Amount)
		if tx.Amount.Cmp(largest) > 0 {
			largest.Set(tx.Amount)
		}
		if m.cfg.FlagRule(tx, m.cfg.Converter.ToUSD(tx.Amount), snapshot) {
			flagged = append(flagged, tx.ID)
		}
	}

	if len(flagged) > 0 {
		m.logger.Warn("Compliance report flagged transactions", map[string]interface{}{
			"address": address,
			"flagged": len(flagged),
		})
	}

	return domain.ComplianceReport{
		Address:             address,
		Period:              domain.ReportPeriod{Start: start, End: end},
		TotalTransactions:   len(transactions),
		TotalVolume:         total,
		LargestTransaction:  largest,
		FlaggedTransactions: flagged,
		KYCLevel:            snapshot,
		GeneratedAt:         m.cfg.Clock(),
	}
}
