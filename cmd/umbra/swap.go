package main

import (
	"github.com/spf13/cobra"

	"umbra/pkg/domain"
)

func newSwapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote and prepare shielded swaps",
	}
	cmd.AddCommand(newSwapQuoteCmd(a), newSwapExecuteCmd(a))
	return cmd
}

func newSwapQuoteCmd(a *app) *cobra.Command {
	var in, out, amount string
	var slippage int
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap net of the privacy fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			svc, err := a.openWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			quote, err := svc.Swaps().GetShieldedQuote(cmd.Context(), in, out, value, slippage)
			if err != nil {
				return err
			}
			fees, err := svc.Swaps().EstimateTotalFees(cmd.Context(), in, out, value)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"quote": quote,
				"fees":  fees,
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", domain.NativeMint, "Input mint")
	cmd.Flags().StringVar(&out, "out", "", "Output mint (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Input amount in smallest units (required)")
	cmd.Flags().IntVar(&slippage, "slippage-bps", 0, "Slippage in basis points, configured default when 0")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newSwapExecuteCmd(a *app) *cobra.Command {
	var in, out, amount, minOutput, user, input string
	var slippage int
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Commit the input note, prove it and record its nullifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			params := domain.ShieldedSwapParams{
				InputMint:       in,
				OutputMint:      out,
				Amount:          value,
				SlippageBps:     slippage,
				UserAddress:     user,
				InputCommitment: input,
			}
			if minOutput != "" {
				if params.MinOutput, err = parseAmount(minOutput); err != nil {
					return err
				}
			}

			svc, err := a.openWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			result, err := svc.ShieldedSwap(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVar(&in, "in", domain.NativeMint, "Input mint")
	cmd.Flags().StringVar(&out, "out", "", "Output mint (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Input amount in smallest units (required)")
	cmd.Flags().StringVar(&minOutput, "min-output", "", "Minimum acceptable output")
	cmd.Flags().StringVar(&user, "user", "", "Payer of the input leg")
	cmd.Flags().StringVar(&input, "input", "", "Commitment of the note funding the swap (required)")
	cmd.Flags().IntVar(&slippage, "slippage-bps", 0, "Slippage in basis points, configured default when 0")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
