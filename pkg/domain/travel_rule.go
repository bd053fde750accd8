package domain

import (
	"math/big"
	"time"
)

// TravelRuleData is the originator/beneficiary record exchanged between VASPs
type TravelRuleData struct {
	OriginatorName     string    `json:"originatorName" validate:"required"`
	OriginatorAddress  string    `json:"originatorAddress" validate:"required"`
	BeneficiaryName    string    `json:"beneficiaryName" validate:"required"`
	BeneficiaryAddress string    `json:"beneficiaryAddress" validate:"required"`
	Amount             *big.Int  `json:"amount" validate:"positive_bigint"`
	Token              string    `json:"token"`
	Timestamp          time.Time `json:"timestamp"`
	VASPOrigin         string    `json:"vaspOrigin,omitempty"`
	VASPBeneficiary    string    `json:"vaspBeneficiary,omitempty"`
}
