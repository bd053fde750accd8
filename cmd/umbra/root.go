package main

import (
	"encoding/json"
	"math/big"

	"github.com/spf13/cobra"

	"umbra/internal/compliance"
	"umbra/pkg/config"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
)

// app is filled in by the root command before any subcommand runs.
type app struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "umbra",
		Short:         "Umbra privacy and compliance CLI",
		Long:          "Build shielded transactions, issue view keys and audit tokens, and exchange Travel Rule records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				config.LoadDotEnv(envFile)
			} else {
				config.LoadDotEnv()
			}
			a.cfg = config.Load()
			a.log = logger.NewWithWriter("umbra-cli", cmd.ErrOrStderr(), a.cfg.Log.Level)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file")

	root.AddCommand(
		newCommitCmd(),
		newViewKeyCmd(a),
		newAuditTokenCmd(a),
		newKYCLevelCmd(a),
		newThresholdCmd(a),
		newTravelRuleCmd(a),
		newBuildCmd(a),
		newSwapCmd(a),
		newWalletCmd(a),
	)
	return root
}

func (a *app) complianceManager() (*compliance.Manager, error) {
	return compliance.NewManager(compliance.ConfigFrom(a.cfg), a.log)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmount(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidAmount, "amount %q is not an integer", s)
	}
	return n, nil
}
