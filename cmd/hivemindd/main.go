// Package main provides the hivemindd server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hivemindlabs/hivemindd/internal/config"
	"github.com/hivemindlabs/hivemindd/internal/supervisor"
)

func main() {
	flag.Parse()

	cfg := config.Load()

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	logger.Info("starting hivemindd", "listen_addr", cfg.ListenAddr, "data_dir", cfg.DataDir)

	sup, err := supervisor.New(cfg, logger)
	if err != nil {
		logger.Error("failed to construct supervisor", "error", err)
		os.Exit(1)
	}

	err = sup.RunUntilSignal(context.Background())
	os.Exit(supervisor.ExitCode(err))
}
