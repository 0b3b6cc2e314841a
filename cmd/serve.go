package main

import (
	"github.com/spf13/cobra"

	"github.com/agallais/Quantum-aqora/internal/server"
)

var serveAddr string
var serveDataDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP run server",
	Long:  `Serves the run API: submit geometries, stream progress, fetch results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServer(serveAddr, serveDataDir)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data", "./data", "Directory for run records and traces")
	rootCmd.AddCommand(serveCmd)
}
