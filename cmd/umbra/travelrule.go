package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"umbra/internal/travelrule"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

func newTravelRuleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "travelrule",
		Short: "Prepare and exchange encrypted Travel Rule records",
	}
	cmd.AddCommand(newTravelRuleKeygenCmd(a), newTravelRuleEncryptCmd(a), newTravelRuleDecryptCmd(a))
	return cmd
}

func (a *app) travelRule() *travelrule.Manager {
	return travelrule.NewManager(a.cfg.TravelRule, a.log)
}

func newTravelRuleKeygenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a VASP key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := a.travelRule().GenerateKeyPair()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"publicKey":  pub,
				"privateKey": priv,
			})
		},
	}
}

func newTravelRuleEncryptCmd(a *app) *cobra.Command {
	var recipientKey, amount, token string
	var originatorName, originatorAddress string
	var beneficiaryName, beneficiaryAddress string
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Prepare a Travel Rule record and seal it for a beneficiary VASP",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}
			m := a.travelRule()
			data := m.Prepare(originatorName, originatorAddress, beneficiaryName, beneficiaryAddress, value, token)
			if !m.Validate(data) {
				return errors.New(errors.CodeInvalidCredential, "travel rule record is incomplete")
			}
			sealed, err := m.Encrypt(data, recipientKey)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), sealed+"\n")
			return err
		},
	}
	cmd.Flags().StringVar(&recipientKey, "recipient-key", "", "Beneficiary VASP public key (required)")
	cmd.Flags().StringVar(&originatorName, "originator-name", "", "Originator name")
	cmd.Flags().StringVar(&originatorAddress, "originator-address", "", "Originator address")
	cmd.Flags().StringVar(&beneficiaryName, "beneficiary-name", "", "Beneficiary name")
	cmd.Flags().StringVar(&beneficiaryAddress, "beneficiary-address", "", "Beneficiary address")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in smallest units")
	cmd.Flags().StringVar(&token, "token", domain.NativeMint, "Token mint")
	_ = cmd.MarkFlagRequired("recipient-key")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newTravelRuleDecryptCmd(a *app) *cobra.Command {
	var privateKey string
	cmd := &cobra.Command{
		Use:   "decrypt [ciphertext]",
		Short: "Open a sealed Travel Rule record; reads stdin without an argument",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sealed string
			if len(args) == 1 {
				sealed = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				sealed = string(data)
			}
			data, err := a.travelRule().Decrypt(strings.TrimSpace(sealed), privateKey)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		},
	}
	cmd.Flags().StringVar(&privateKey, "private-key", "", "Beneficiary VASP private key (required)")
	_ = cmd.MarkFlagRequired("private-key")
	return cmd
}
