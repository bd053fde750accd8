package main

import (
	"github.com/spf13/cobra"

	"umbra/pkg/domain"
)

func newWalletCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Inspect and manage the stored wallet record",
	}
	cmd.AddCommand(newWalletStatusCmd(a), newWalletSettingsCmd(a), newWalletDeleteCmd(a))
	return cmd
}

func newWalletStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a wallet is stored and its settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			has, err := svc.HasWallet(cmd.Context())
			if err != nil {
				return err
			}
			settings, err := svc.LoadSettings(cmd.Context())
			if err != nil {
				return err
			}
			data, err := svc.LoadWalletData(cmd.Context())
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"hasWallet": has,
				"settings":  settings,
			}
			if data != nil {
				out["address"] = data.Address
				out["accounts"] = len(data.Accounts)
			}
			return printJSON(cmd, out)
		},
	}
}

func newWalletSettingsCmd(a *app) *cobra.Command {
	var theme, network, currency, language string
	var autoLock, biometric bool
	var autoLockTime int
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update stored settings; unset flags keep their value",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			s, err := svc.LoadSettings(cmd.Context())
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("theme") {
				s.Theme = domain.Theme(theme)
			}
			if f.Changed("network") {
				s.Network = domain.Cluster(network)
			}
			if f.Changed("currency") {
				s.Currency = currency
			}
			if f.Changed("language") {
				s.Language = language
			}
			if f.Changed("auto-lock") {
				s.AutoLock = autoLock
			}
			if f.Changed("auto-lock-time") {
				s.AutoLockTime = autoLockTime
			}
			if f.Changed("biometric") {
				s.BiometricEnabled = biometric
			}
			if err := svc.SaveSettings(cmd.Context(), s); err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	cmd.Flags().StringVar(&network, "network", "", "devnet, testnet or mainnet-beta")
	cmd.Flags().StringVar(&currency, "currency", "", "Display currency")
	cmd.Flags().StringVar(&language, "language", "", "UI language")
	cmd.Flags().BoolVar(&autoLock, "auto-lock", true, "Lock automatically")
	cmd.Flags().IntVar(&autoLockTime, "auto-lock-time", 5, "Minutes before auto lock")
	cmd.Flags().BoolVar(&biometric, "biometric", false, "Enable biometric unlock")
	return cmd
}

func newWalletDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the wallet record, sealed seed and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				cmd.Println("Refusing to delete without --yes")
				return nil
			}
			svc, err := a.openWallet(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.DeleteWallet(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Wallet deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
