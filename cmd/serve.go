package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediverifyng/mediverify/internal/server"
	"github.com/mediverifyng/mediverify/internal/utils"
	"github.com/mediverifyng/mediverify/pkg/catalog"
	"github.com/mediverifyng/mediverify/pkg/reports"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local HTTP API for verification and reporting",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username == "" {
			username = viper.GetString("server.username")
		}
		if password == "" {
			password = viper.GetString("server.password")
		}

		cat, err := catalog.Load(catalogPath(cmd))
		if err != nil {
			return err
		}

		dbPath, _ := cmd.Flags().GetString("dbpath")
		absPath, err := utils.GetAbsDBPath(dbPath)
		if err != nil {
			return err
		}
		db, err := reports.Open(absPath)
		if err != nil {
			return err
		}
		defer db.Close()

		s := server.New(cat, db, username, password)
		return s.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
	serveCmd.Flags().String("username", "", "Basic auth username (empty disables auth)")
	serveCmd.Flags().String("password", "", "Basic auth password")
}
