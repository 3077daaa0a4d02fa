package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/skillprobe/internal/interview"
	"github.com/abhisek/skillprobe/internal/store"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		infos, err := s.Sessions().List(context.Background())
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-19s\n", "ID", "Created", "Updated")
		fmt.Println(strings.Repeat("─", 80))
		for _, info := range infos {
			fmt.Printf("%-36s  %-19s  %-19s\n",
				info.ID,
				info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				info.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's skill summaries and progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, _ := cmd.Flags().GetBool("logs")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		data, err := s.Sessions().Load(context.Background(), args[0])
		if errors.Is(err, store.ErrSessionNotFound) {
			return fmt.Errorf("session %s not found", args[0])
		}
		if err != nil {
			return err
		}

		ledger, err := interview.LoadLedger(data)
		if err != nil {
			return err
		}

		fmt.Printf("Session:  %s\n", ledger.SessionID)
		fmt.Printf("Turn:     %d/%d\n", ledger.Turn, ledger.Config.MaxTurns)
		if reason, done := ledger.TerminalReason(); done {
			fmt.Printf("Finished: %s\n", reason)
		} else if ledger.AwaitingAnswer && ledger.CurrentQuestion != nil {
			fmt.Printf("Pending:  [%s] %s\n", ledger.CurrentQuestion.Skill, ledger.CurrentQuestion.Text)
		}

		fmt.Println()
		printSummaries(ledger)

		if logs {
			fmt.Println()
			fmt.Println("Audit log")
			fmt.Println(strings.Repeat("─", 72))
			for _, line := range ledger.Logs {
				fmt.Println(line)
			}
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.Sessions().Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

// printSummaries renders the per-skill belief table.
func printSummaries(l *interview.Ledger) {
	fmt.Printf("%-20s  %-9s  %3s  %6s  %6s  %6s\n", "Skill", "Status", "N", "Mean", "SE", "LCB")
	fmt.Println(strings.Repeat("─", 60))
	for _, sum := range l.Summaries {
		fmt.Printf("%-20s  %-9s  %3d  %6.2f  %6.2f  %6.2f\n",
			sum.Skill, sum.Status, sum.RealObs, sum.Mean, sum.StdErr, sum.Lower)
	}
}

func init() {
	sessionsShowCmd.Flags().Bool("logs", false, "Include the full audit log")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
