package clicmd

import (
	"context"
	"fmt"

	"github.com/hivemindlabs/hivemindd/internal/supervisor"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hivemindd server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog := loggerFromConfig()
		defer closeLog()

		sup, err := supervisor.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("construct supervisor: %w", err)
		}
		return sup.RunUntilSignal(context.Background())
	},
}
