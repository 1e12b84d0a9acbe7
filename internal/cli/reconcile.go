package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the stored balance of every account with its transactions",
	Long: `Recompute the balance of every account from its opening balance and
its transactions and list the accounts whose stored balance differs.

Nothing is changed. Use the API to resolve a drift.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	_, svc, err := setup()
	if err != nil {
		return err
	}

	accounts, err := svc.Accounts()
	if err != nil {
		return err
	}

	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID.String()] = a.Name
	}

	results, err := svc.ReconcileAll()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tSTORED\tCOMPUTED\tDRIFT\tKIND")

	drifted := 0
	for _, r := range results {
		if r.OK {
			continue
		}
		drifted++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", names[r.AccountID.String()], r.Actual.StringFixed(2), r.Expected.StringFixed(2), r.Drift.StringFixed(2), r.Kind)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d accounts drifted\n", drifted, len(results))
	return nil
}
