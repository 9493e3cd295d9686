package cmd

import (
	"encoding/json"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mobcash-cli",
	Short: "api cmd for the mobcash service",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("endpoint", "l", "http://localhost:8080", "api endpoint")
	rootCmd.PersistentFlags().StringP("owner", "u", "", "owner id")
	rootCmd.PersistentFlags().StringP("operator-key", "k", "", "operator capability key")
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("owner", rootCmd.PersistentFlags().Lookup("owner"))
	viper.BindPFlag("operator_key", rootCmd.PersistentFlags().Lookup("operator-key"))
}

func getAPIClient() *resty.Client {
	client := resty.New().SetBaseURL(viper.GetString("endpoint"))

	if owner := viper.GetString("owner"); owner != "" {
		client.SetHeader("X-Owner-Id", owner)
	}

	if key := viper.GetString("operator_key"); key != "" {
		client.SetHeader("X-Operator-Key", key)
	}

	return client
}

func printJson(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println(string(b))
	return nil
}

func printBody(cmd *cobra.Command, body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		cmd.Println(string(body))
		return nil
	}

	return printJson(cmd, v)
}
