package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stakewatch/stakewatch/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and store status",
	Run:   runStatus,
}

func runStatus(cmd *cobra.Command, args []string) {
	printHeader("StakeWatch status")

	path, err := config.ConfigPath()
	if err == nil {
		fmt.Printf("  Config:        %s\n", path)
	}

	rt, ok := newRuntime()
	if !ok {
		os.Exit(1)
	}
	defer rt.Close()

	cfg := rt.Config
	fmt.Printf("  Registry mode: %s\n", cfg.Registry.Mode)
	fmt.Printf("  Profile store: %s\n", cfg.Registry.StorePath)
	if cfg.Signals.Kafka.Enabled {
		fmt.Printf("  Signals:       kafka (%s, topic %s)\n",
			cfg.Signals.Kafka.Brokers, cfg.Signals.Kafka.Topic)
	} else {
		fmt.Printf("  Signals:       deterministic (seed %d)\n", cfg.Signals.Seed)
	}
	fmt.Printf("  Operations:    %d\n", len(rt.Ops.List()))

	profiles, err := rt.Engine.Registry().Profiles(context.Background())
	if err != nil {
		color.Yellow("  Profiles:      unavailable (%v)", err)
		return
	}
	synthesized := 0
	for _, p := range profiles {
		if p.Synthesized {
			synthesized++
		}
	}
	fmt.Printf("  Profiles:      %d stored (%d synthesized)\n", len(profiles), synthesized)
}
