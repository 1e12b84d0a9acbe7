package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var reassignCmd = &cobra.Command{
	Use:   "reassign FROM TO",
	Short: "Move all records from one account to another",
	Long: `Move all transactions, scheduled transactions and match rules of the
account FROM to the account TO in a single database transaction.

Balances are not changed. Reconcile both accounts afterwards.

Example:
  obligo reassign 7a7b1d30-1b4c-4a8f-9f4e-0d5f8a0b1c2d f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5`,
	Args: cobra.ExactArgs(2),
	RunE: runReassign,
}

func runReassign(cmd *cobra.Command, args []string) error {
	from, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid account ID %q: %w", args[0], err)
	}

	to, err := uuid.Parse(args[1])
	if err != nil {
		return fmt.Errorf("invalid account ID %q: %w", args[1], err)
	}

	_, svc, err := setup()
	if err != nil {
		return err
	}

	result, err := svc.Reassign(from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Transactions:           %d\n", result.Transactions)
	fmt.Fprintf(out, "Transfer transactions:  %d\n", result.TransferTransactions)
	fmt.Fprintf(out, "Scheduled transactions: %d\n", result.ScheduledTransactions)
	fmt.Fprintf(out, "Match rules:            %d\n", result.MatchRules)

	return nil
}
