package cmd

import (
	"fmt"

	"phone-shop/internal/database"
	"phone-shop/internal/money"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print cash balance and cumulative profit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, eng, err := openEngine()
		if err != nil {
			return err
		}
		defer database.Close(db)

		snap, err := eng.Balance(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "balance: %s USD / %s LC\n", snap.Balance.USD.StringFixed(2), snap.Balance.LC.StringFixed(0))
		fmt.Fprintf(out, "profit:  %s USD / %s LC\n", snap.Profit.USD.StringFixed(2), snap.Profit.LC.StringFixed(0))

		if check, _ := cmd.Flags().GetBool("check"); check {
			drift, err := eng.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if !drift.IsZero() {
				return fmt.Errorf("balance differs from transaction log by %s", drift)
			}
			fmt.Fprintln(out, "transaction log matches balance")
		}
		return nil
	},
}

var balanceAdjustCmd = &cobra.Command{
	Use:     "adjust",
	Short:   "Book an opening balance or a counted cash difference",
	Example: `  phone-shop balance adjust --usd 500 --lc 250000 --note "opening cash"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		usdStr, _ := cmd.Flags().GetString("usd")
		lcStr, _ := cmd.Flags().GetString("lc")
		note, _ := cmd.Flags().GetString("note")

		usd, err := decimal.NewFromString(usdStr)
		if err != nil {
			return fmt.Errorf("invalid --usd %q: %w", usdStr, err)
		}
		lc, err := decimal.NewFromString(lcStr)
		if err != nil {
			return fmt.Errorf("invalid --lc %q: %w", lcStr, err)
		}

		db, eng, err := openEngine()
		if err != nil {
			return err
		}
		defer database.Close(db)

		entry, err := eng.AdjustBalance(cmd.Context(), money.Amounts{USD: usd, LC: lc}, note)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recorded transaction #%d\n", entry.ID)
		return nil
	},
}

func init() {
	balanceCmd.Flags().Bool("check", false, "Also verify the balance against the transaction log")

	balanceAdjustCmd.Flags().String("usd", "0", "USD delta, negative to take cash out")
	balanceAdjustCmd.Flags().String("lc", "0", "LC delta, negative to take cash out")
	balanceAdjustCmd.Flags().String("note", "", "Reason for the adjustment")
	_ = balanceAdjustCmd.MarkFlagRequired("note")

	balanceCmd.AddCommand(balanceAdjustCmd)
	rootCmd.AddCommand(balanceCmd)
}
