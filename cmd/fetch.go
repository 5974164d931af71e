package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediverifyng/mediverify/internal/utils"
	"github.com/mediverifyng/mediverify/pkg/catalog"
	"github.com/mediverifyng/mediverify/pkg/fetch"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the reference catalog from a registry endpoint",
	Long: `Downloads drug records from a registry endpoint and writes them as the
catalog CSV that verify reads. Supports a JSON export endpoint or a
greenbook-style HTML listing page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		url, _ := cmd.Flags().GetString("url")
		out, _ := cmd.Flags().GetString("out")

		if url == "" {
			switch source {
			case "json":
				url = viper.GetString("catalog.json_url")
			case "html":
				url = viper.GetString("catalog.html_url")
			}
		}
		if url == "" {
			return fmt.Errorf("no URL given (use --url or set catalog.%s_url in the config)", source)
		}
		if out == "" {
			out = viper.GetString("catalog.path")
		}

		client := fetch.Client()
		ctx := context.Background()

		var records []catalog.Record
		var err error
		switch source {
		case "json":
			records, err = fetch.FromJSON(ctx, client, url)
		case "html":
			records, err = fetch.FromHTML(ctx, client, url)
		default:
			return fmt.Errorf("unknown source %q (want json or html)", source)
		}
		if err != nil {
			return err
		}

		if err := fetch.WriteCSV(out, records); err != nil {
			return err
		}
		utils.Log.Infof("wrote %d records to %s", len(records), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("source", "json", "Registry source type: json or html")
	fetchCmd.Flags().String("url", "", "Registry endpoint URL")
	fetchCmd.Flags().String("out", "", "Output CSV path (default catalog.path from config)")
}
