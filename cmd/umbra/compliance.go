package main

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"umbra/internal/commitment"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

func newCommitCmd() *cobra.Command {
	var amount, asset string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Compute a note commitment and its nullifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			engine := commitment.NewEngine()
			note, err := engine.Commit(value, asset)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"commitment": note.Commitment,
				"nullifier":  engine.NullifierOf(note.Commitment),
				"asset":      note.Asset,
				"salt":       note.SaltHex(),
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in smallest units (required)")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset mint, native when empty")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newViewKeyCmd(a *app) *cobra.Command {
	var address, keyType, description string
	var expires time.Duration
	cmd := &cobra.Command{
		Use:   "viewkey",
		Short: "Generate a view key for an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.complianceManager()
			if err != nil {
				return err
			}
			vk, err := m.GenerateViewKey(address, domain.ViewKeyType(keyType), description, expiry(expires))
			if err != nil {
				return err
			}
			return printJSON(cmd, vk)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Owner address (required)")
	cmd.Flags().StringVar(&keyType, "type", string(domain.ViewKeyFull), "FULL, INCOMING, OUTGOING or BALANCE")
	cmd.Flags().StringVar(&description, "description", "", "Free text description")
	cmd.Flags().DurationVar(&expires, "expires", 0, "Validity, 0 for no expiry")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newAuditTokenCmd(a *app) *cobra.Command {
	var address, auditor string
	var scope []string
	var expires time.Duration
	cmd := &cobra.Command{
		Use:   "audit-token",
		Short: "Grant an auditor a full view key and print a signed credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.complianceManager()
			if err != nil {
				return err
			}
			validity := expires
			if !cmd.Flags().Changed("expires") {
				validity = a.cfg.Compliance.DefaultTokenValidity
			}
			token, err := m.CreateAuditToken(address, auditor, scope, expiry(validity))
			if err != nil {
				return err
			}
			credential, err := m.IssueCredential(token.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"token":      token,
				"credential": credential,
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Audited address (required)")
	cmd.Flags().StringVar(&auditor, "auditor", "", "Auditor identifier (required)")
	cmd.Flags().StringSliceVar(&scope, "scope", nil, "Comma separated scope entries")
	cmd.Flags().DurationVar(&expires, "expires", 0, "Validity, 0 for no expiry")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("auditor")
	return cmd
}

func newKYCLevelCmd(a *app) *cobra.Command {
	var usd string
	cmd := &cobra.Command{
		Use:   "kyc-level",
		Short: "Print the KYC level required for a USD amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(usd)
			if err != nil {
				return errors.WithCause(errors.CodeInvalidAmount, "invalid USD amount", err)
			}
			m, err := a.complianceManager()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"amountUsd":     amount,
				"requiredLevel": m.GetRequiredKYCLevel(amount),
			})
		},
	}
	cmd.Flags().StringVar(&usd, "usd", "", "Amount in USD (required)")
	_ = cmd.MarkFlagRequired("usd")
	return cmd
}

// kycFlags are shared by every command that evaluates limits.
type kycFlags struct {
	level    int
	verified bool
	daily    string
	monthly  string
}

func (k *kycFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&k.level, "kyc-level", 0, "KYC level of the sender")
	cmd.Flags().BoolVar(&k.verified, "kyc-verified", false, "Whether the sender is verified")
	cmd.Flags().StringVar(&k.daily, "daily-limit", "", "Daily USD limit, configured default when empty")
	cmd.Flags().StringVar(&k.monthly, "monthly-limit", "", "Monthly USD limit, configured default when empty")
}

func (k *kycFlags) snapshot(a *app) (domain.KYCLevel, error) {
	daily, err := decimalOr(k.daily, a.cfg.Compliance.DefaultDailyLimit)
	if err != nil {
		return domain.KYCLevel{}, err
	}
	monthly, err := decimalOr(k.monthly, a.cfg.Compliance.DefaultMonthlyLimit)
	if err != nil {
		return domain.KYCLevel{}, err
	}
	return domain.KYCLevel{
		Level:        k.level,
		Verified:     k.verified,
		DailyLimit:   daily,
		MonthlyLimit: monthly,
	}, nil
}

func newThresholdCmd(a *app) *cobra.Command {
	var amount, period string
	var kyc kycFlags
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Check an amount against a KYC limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			level, err := kyc.snapshot(a)
			if err != nil {
				return err
			}
			m, err := a.complianceManager()
			if err != nil {
				return err
			}
			return printJSON(cmd, m.CheckThreshold(value, level, domain.LimitPeriod(period)))
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in smallest units (required)")
	cmd.Flags().StringVar(&period, "period", string(domain.PeriodDaily), "daily or monthly")
	kyc.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func decimalOr(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.WithCause(errors.CodeInvalidAmount, "invalid USD limit", err)
	}
	return d, nil
}

func expiry(d time.Duration) *time.Time {
	if d <= 0 {
		return nil
	}
	t := time.Now().Add(d)
	return &t
}
