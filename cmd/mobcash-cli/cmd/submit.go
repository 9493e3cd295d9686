package cmd

import (
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "submit a deposit or withdraw against the external balance service",
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, _ := cmd.Flags().GetString("direction")
		amount, _ := cmd.Flags().GetString("amount")
		externalUser, _ := cmd.Flags().GetInt64("external-user")
		note, _ := cmd.Flags().GetString("note")

		resp, err := getAPIClient().R().
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]any{
				"direction":        direction,
				"amount":           amount,
				"external_user_id": externalUser,
				"note":             note,
			}).
			Post("/api/transactions")
		if err != nil {
			return err
		}

		return printBody(cmd, resp.Body())
	},
}

func init() {
	submitCmd.Flags().String("direction", "deposit", "deposit or withdraw")
	submitCmd.Flags().String("amount", "", "amount, 2 decimal places")
	submitCmd.Flags().Int64("external-user", 0, "external user id")
	submitCmd.Flags().String("note", "", "free-text note")

	rootCmd.AddCommand(submitCmd)
}
