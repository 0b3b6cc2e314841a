package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agallais/Quantum-aqora/internal/store"
)

var runsDataDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage persisted optimization runs",
	Long:  `List, inspect and delete run records produced by previous optimizations.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted runs",
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its energy trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run record and its trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data", "./data", "Directory for run records and traces")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}

	infos, err := st.ListRuns()
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tFORMULA\tTIMESTAMP\tITERATIONS\tENERGY\tCONVERGED")
	fmt.Fprintln(w, "------\t-------\t---------\t----------\t------\t---------")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.6f\t%v\n",
			displayID(info.RunID),
			info.Formula,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Iterations,
			info.Energy,
			info.Converged,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}

	record, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run:        %s\n", record.RunID)
	fmt.Printf("Formula:    %s\n", record.Formula)
	fmt.Printf("Finished:   %s\n", record.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Iterations: %d\n", record.Iterations)
	fmt.Printf("Converged:  %v\n", record.Converged)
	fmt.Printf("Energy:     %.8f\n", record.Energy)
	fmt.Printf("Params:     %v\n", record.Params)

	entries, err := store.ReadTrace(runsDataDir, record.RunID)
	if err != nil {
		// A record without a trace is still useful.
		return nil
	}

	fmt.Println("\nEnergy trace:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITERATION\tENERGY")
	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%.8f\n", entry.Iteration, entry.Energy)
	}
	w.Flush()
	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	if err := st.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}

// displayID truncates long UUIDs for table output.
func displayID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}
