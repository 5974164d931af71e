package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediverifyng/mediverify/pkg/catalog"
	"github.com/mediverifyng/mediverify/pkg/verify"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <nafdac-number>",
	Short: "Check a registration code against the reference catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.TrimSpace(args[0])
		if code == "" {
			return fmt.Errorf("registration code must not be blank")
		}

		cat, err := catalog.Load(catalogPath(cmd))
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		threshold, _ := cmd.Flags().GetInt("threshold")

		result := verify.Verify(cat, code)
		switch result.Outcome {
		case verify.Verified:
			fmt.Println("VERIFIED")
			printRecord(result.Record)
		case verify.FoundUnverified:
			fmt.Printf("NOT VERIFIED (status: %s)\n", result.Record.Status)
			printRecord(result.Record)
		case verify.NotFound:
			fmt.Println("NOT FOUND")
			suggestions := verify.Suggest(cat, code, limit, threshold)
			if len(suggestions) > 0 {
				fmt.Println("Did you mean:")
				for _, s := range suggestions {
					fmt.Printf("  %s\n", s)
				}
			}
		}
		return nil
	},
}

func printRecord(rec *catalog.Record) {
	fmt.Printf("  Name:         %s\n", rec.DrugName)
	fmt.Printf("  Manufacturer: %s\n", rec.Manufacturer)
	fmt.Printf("  NAFDAC No:    %s\n", rec.Code)
	fmt.Printf("  Status:       %s\n", rec.Status)
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Int("limit", verify.DefaultLimit, "Maximum number of suggestions on a miss")
	verifyCmd.Flags().Int("threshold", verify.DefaultThreshold, "Similarity score a suggestion must exceed (0-100)")
}
