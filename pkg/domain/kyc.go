package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// ViewKeyType is the disclosure scope of a view key
type ViewKeyType string

const (
	ViewKeyFull     ViewKeyType = "FULL"
	ViewKeyIncoming ViewKeyType = "INCOMING"
	ViewKeyOutgoing ViewKeyType = "OUTGOING"
	ViewKeyBalance  ViewKeyType = "BALANCE"
)

func (t ViewKeyType) Valid() bool {
	switch t {
	case ViewKeyFull, ViewKeyIncoming, ViewKeyOutgoing, ViewKeyBalance:
		return true
	}
	return false
}

// ViewKey grants read access to an address's shielded activity
type ViewKey struct {
	Type        ViewKeyType `json:"type"`
	Key         string      `json:"key"`
	Address     string      `json:"address"`
	CreatedAt   time.Time   `json:"createdAt"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	Description string      `json:"description,omitempty"`
}

// AuditToken is a revocable grant of a full view key to an auditor. ViewKey
// holds the key string, not the record.
type AuditToken struct {
	ID        string     `json:"id"`
	Address   string     `json:"address"`
	ViewKey   string     `json:"viewKey"`
	Scope     []string   `json:"scope"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Issuer    string     `json:"issuer"`
	Recipient string     `json:"recipient"`
	Revoked   bool       `json:"revoked"`
}

// ActiveAt reports whether the token is unrevoked and unexpired at t.
func (a *AuditToken) ActiveAt(t time.Time) bool {
	if a.Revoked {
		return false
	}
	return a.ExpiresAt == nil || !a.ExpiresAt.Before(t)
}

// KYCLevel is a snapshot of an address's verification status. Limits are USD.
type KYCLevel struct {
	Level        int             `json:"level"`
	Verified     bool            `json:"verified"`
	VerifiedAt   *time.Time      `json:"verifiedAt,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	DailyLimit   decimal.Decimal `json:"dailyLimit"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
}

// TransactionDisclosure describes one transaction revealed to an auditor
type TransactionDisclosure struct {
	TransactionID     string    `json:"transactionId"`
	From              string    `json:"from"`
	To                string    `json:"to"`
	Amount            *big.Int  `json:"amount"`
	Token             string    `json:"token,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	Memo              string    `json:"memo,omitempty"`
	ProofOfCompliance string    `json:"proofOfCompliance,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ComplianceReport aggregates an address's activity over a period
type ComplianceReport struct {
	Address             string       `json:"address"`
	Period              ReportPeriod `json:"period"`
	TotalTransactions   int          `json:"totalTransactions"`
	TotalVolume         *big.Int     `json:"totalVolume"`
	LargestTransaction  *big.Int     `json:"largestTransaction"`
	FlaggedTransactions []string     `json:"flaggedTransactions"`
	KYCLevel            KYCLevel     `json:"kycLevel"`
	GeneratedAt         time.Time    `json:"generatedAt"`
}

// ThresholdCheck is the outcome of a USD threshold evaluation
type ThresholdCheck struct {
	Allowed     bool            `json:"allowed"`
	Remaining   decimal.Decimal `json:"remaining"`
	Threshold   decimal.Decimal `json:"threshold"`
	RequiresKYC bool            `json:"requiresKyc"`
}

// LimitPeriod selects which KYC limit a threshold check uses
type LimitPeriod string

const (
	PeriodDaily   LimitPeriod = "daily"
	PeriodMonthly LimitPeriod = "monthly"
)

// ReportTransaction is one caller-supplied entry of a compliance report
type ReportTransaction struct {
	ID        string    `json:"id"`
	Amount    *big.Int  `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
