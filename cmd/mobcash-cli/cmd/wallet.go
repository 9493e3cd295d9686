package cmd

import (
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "show the owner's wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := getAPIClient().R().Get("/api/wallet")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "list the owner's recent transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetString("limit")

		resp, err := getAPIClient().R().
			SetQueryParam("limit", limit).
			Get("/api/transactions")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

func init() {
	transactionsCmd.Flags().String("limit", "10", "max rows")

	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(transactionsCmd)
}
