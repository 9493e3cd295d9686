package cmd

import (
	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "move funds between two local wallets (operator only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetString("amount")

		resp, err := getAPIClient().R().
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{
				"to_owner_id": to,
				"amount":      amount,
			}).
			Post("/api/cashier/transfers")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "search the external directory by referral token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("referral-token")

		resp, err := getAPIClient().R().
			SetQueryParam("referral_token", token).
			Get("/api/clients")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show transaction counts per sync status (operator only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := getAPIClient().R().Get("/api/cashier/stats")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

func init() {
	transferCmd.Flags().String("to", "", "destination owner id")
	transferCmd.Flags().String("amount", "", "amount, 2 decimal places")
	clientsCmd.Flags().String("referral-token", "", "referral token")

	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(statsCmd)
}
