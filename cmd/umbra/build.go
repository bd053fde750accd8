package main

import (
	"context"
	"encoding/base64"
	"math/big"

	"github.com/spf13/cobra"

	"umbra/internal/shielded"
	"umbra/internal/wallet"
	"umbra/pkg/domain"
)

func (a *app) openWallet(ctx context.Context) (*wallet.Service, error) {
	return wallet.Open(ctx, a.cfg, nil, a.log)
}

// buildFlags are common to the three shielded build commands.
type buildFlags struct {
	amount   string
	mint     string
	feeLevel string
	memo     string
	feePayer string
	estimate bool
	simulate bool
}

func (b *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.amount, "amount", "", "Amount in smallest units (required)")
	cmd.Flags().StringVar(&b.mint, "mint", "", "Asset mint, native when empty")
	cmd.Flags().StringVar(&b.feeLevel, "fee-level", string(domain.FeeLevelMedium), "low, medium or high")
	cmd.Flags().StringVar(&b.memo, "memo", "", "Optional memo")
	cmd.Flags().StringVar(&b.feePayer, "fee-payer", "", "Fee payer, the counterparty when empty")
	cmd.Flags().BoolVar(&b.estimate, "estimate-fee", false, "Price the transaction against the RPC node")
	cmd.Flags().BoolVar(&b.simulate, "simulate", false, "Simulate the transaction against the RPC node")
	_ = cmd.MarkFlagRequired("amount")
}

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an unsigned shielded transaction",
	}
	cmd.AddCommand(newBuildTransferCmd(a), newBuildDepositCmd(a), newBuildWithdrawalCmd(a))
	return cmd
}

func newBuildTransferCmd(a *app) *cobra.Command {
	var to, input string
	var flags buildFlags
	var kyc kycFlags
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Shielded transfer to a recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, &flags, func(ctx context.Context, svc *wallet.Service, amount *big.Int, level domain.FeeLevel) (*shielded.Built, error) {
				snapshot, err := kyc.snapshot(a)
				if err != nil {
					return nil, err
				}
				return svc.ShieldedTransfer(ctx, domain.TransferParams{
					RecipientAddress: to,
					Amount:           amount,
					AssetMint:        flags.mint,
					FeeLevel:         level,
					Memo:             flags.memo,
					FeePayer:         flags.feePayer,
					InputCommitment:  input,
				}, snapshot)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&input, "input", "", "Commitment of the note being spent (required)")
	flags.register(cmd)
	kyc.register(cmd)
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newBuildDepositCmd(a *app) *cobra.Command {
	var from string
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit public funds into the shielded pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, &flags, func(ctx context.Context, svc *wallet.Service, amount *big.Int, level domain.FeeLevel) (*shielded.Built, error) {
				return svc.ShieldedDeposit(ctx, domain.DepositParams{
					SourceAddress: from,
					Amount:        amount,
					AssetMint:     flags.mint,
					FeeLevel:      level,
					Memo:          flags.memo,
					FeePayer:      flags.feePayer,
				})
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source address (required)")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newBuildWithdrawalCmd(a *app) *cobra.Command {
	var to, input string
	var flags buildFlags
	var kyc kycFlags
	cmd := &cobra.Command{
		Use:   "withdrawal",
		Short: "Withdraw from the shielded pool to a public address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, &flags, func(ctx context.Context, svc *wallet.Service, amount *big.Int, level domain.FeeLevel) (*shielded.Built, error) {
				snapshot, err := kyc.snapshot(a)
				if err != nil {
					return nil, err
				}
				return svc.ShieldedWithdrawal(ctx, domain.WithdrawalParams{
					RecipientAddress: to,
					Amount:           amount,
					AssetMint:        flags.mint,
					FeeLevel:         level,
					Memo:             flags.memo,
					FeePayer:         flags.feePayer,
					InputCommitment:  input,
				}, snapshot)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&input, "input", "", "Commitment of the note being spent (required)")
	flags.register(cmd)
	kyc.register(cmd)
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type buildFunc func(ctx context.Context, svc *wallet.Service, amount *big.Int, level domain.FeeLevel) (*shielded.Built, error)

func (a *app) runBuild(cmd *cobra.Command, flags *buildFlags, build buildFunc) error {
	ctx := cmd.Context()
	amount, err := parseAmount(flags.amount)
	if err != nil {
		return err
	}
	level, err := domain.ParseFeeLevel(flags.feeLevel)
	if err != nil {
		return err
	}

	svc, err := a.openWallet(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	built, err := build(ctx, svc, amount, level)
	if err != nil {
		return err
	}
	message, err := built.Transaction.Message.MarshalBinary()
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"commitment": built.Commitment,
		"nullifier":  built.Nullifier,
		"proof":      built.Proof,
		"payload":    built.Payload,
		"message":    base64.StdEncoding.EncodeToString(message),
	}
	if flags.estimate {
		fee, err := svc.EstimateFee(ctx, built, level)
		if err != nil {
			return err
		}
		out["fee"] = fee
	}
	if flags.simulate {
		out["simulationOk"] = svc.Builder().Simulate(ctx, built.Transaction)
	}
	return printJSON(cmd, out)
}
