package cmd

import (
	"fmt"

	"phone-shop/internal/database"
	"phone-shop/internal/money"
	"phone-shop/internal/util"

	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show or change the USD/LC exchange rate",
}

var rateGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current rate in both directions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, eng, err := openEngine()
		if err != nil {
			return err
		}
		defer database.Close(db)

		rate, err := eng.CurrentRate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "1 USD = %s LC\n1 LC = %s USD\n",
			rate.USDToLC.String(), rate.LCToUSD.StringFixed(8))
		return nil
	},
}

var rateSetCmd = &cobra.Command{
	Use:     "set <usd_to_lc>",
	Short:   "Store a new rate; the reverse direction is updated too",
	Example: "  phone-shop rate set 1460",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		usdToLC, err := util.ValidateRate(args[0])
		if err != nil {
			return err
		}

		db, eng, err := openEngine()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := eng.SetRate(cmd.Context(), money.USD, money.LC, usdToLC); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "1 USD = %s LC\n", usdToLC.String())
		return nil
	},
}

func init() {
	rateCmd.AddCommand(rateGetCmd, rateSetCmd)
	rootCmd.AddCommand(rateCmd)
}
