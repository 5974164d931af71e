package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mediverifyng/mediverify/internal/utils"
	"github.com/mediverifyng/mediverify/pkg/reports"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Submit and review suspicion reports",
}

var reportSubmitCmd = &cobra.Command{
	Use:   "submit <nafdac-number>",
	Short: "File a suspicion report for a registration code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.TrimSpace(args[0])
		if code == "" {
			return fmt.Errorf("registration code must not be blank")
		}
		reason, _ := cmd.Flags().GetString("reason")
		contact, _ := cmd.Flags().GetString("contact")

		db, release, err := openReportsDB(cmd)
		if err != nil {
			return err
		}
		defer release()

		report, err := db.Append(context.Background(), code, reason, contact)
		if err != nil {
			// Echo the input back so nothing typed is lost; the user can retry.
			utils.Log.Errorf("could not save report: %v", err)
			fmt.Fprintf(os.Stderr, "Your report was NOT saved. Submitted values:\n")
			fmt.Fprintf(os.Stderr, "  code:    %s\n  reason:  %s\n  contact: %s\n", code, reason, contact)
			return err
		}

		fmt.Printf("Report #%d submitted at %s. Thank you for helping protect public health.\n",
			report.ID, report.SubmittedAt)
		return nil
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent suspicion reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, release, err := openReportsDB(cmd)
		if err != nil {
			return err
		}
		defer release()

		list, err := db.List(context.Background(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tSUBMITTED\tREASON\tCONTACT")
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Code, r.SubmittedAt, r.Reason, r.Contact)
		}
		return w.Flush()
	},
}

// openReportsDB resolves the db path, takes the cross-process lock and opens
// the store. The returned release func unlocks and closes.
func openReportsDB(cmd *cobra.Command) (*reports.DB, func(), error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, nil, err
	}

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}

	db, err := reports.Open(absPath)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	release := func() {
		db.Close()
		if err := lock.Unlock(); err != nil {
			utils.Log.Warnf("%v", err)
		}
	}
	return db, release, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSubmitCmd)
	reportCmd.AddCommand(reportListCmd)

	reportSubmitCmd.Flags().String("reason", "", "Why you think this drug is fake (optional)")
	reportSubmitCmd.Flags().String("contact", "", "Contact info for follow-up (optional)")
	reportListCmd.Flags().Int("limit", 50, "Maximum number of reports to show")
}
