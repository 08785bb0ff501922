package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stakewatch/stakewatch/internal/model"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Inspect and seed the group profile store",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored group profiles",
	Run: func(cmd *cobra.Command, args []string) {
		rt, ok := newRuntime()
		if !ok {
			os.Exit(1)
		}
		defer rt.Close()

		profiles, err := rt.Engine.Registry().Profiles(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles stored.")
			return
		}
		printHeader("Group profiles")
		for _, p := range profiles {
			marker := ""
			if p.Synthesized {
				marker = " (synthesized)"
			}
			color.Green("  %s", p.ID)
			fmt.Printf("    %s (%s, %s activity)%s\n", p.Name, p.Type, p.ActivityLevel, marker)
		}
	},
}

var groupsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one group profile as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, ok := newRuntime()
		if !ok {
			os.Exit(1)
		}
		defer rt.Close()

		profile, err := rt.Engine.Registry().Profile(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		raw, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(raw))
	},
}

var groupsSeedCmd = &cobra.Command{
	Use:   "seed <file.jsonl>",
	Short: "Load group profiles from a JSONL file into the store",
	Args:  cobra.ExactArgs(1),
	Run:   runGroupsSeed,
}

func runGroupsSeed(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rt, ok := newRuntime()
	if !ok {
		os.Exit(1)
	}
	defer rt.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line, loaded := 0, 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var profile model.StakeholderGroup
		if err := json.Unmarshal(text, &profile); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping line %d: %v\n", line, err)
			continue
		}
		if profile.ID == "" {
			fmt.Fprintf(os.Stderr, "Skipping line %d: missing id\n", line)
			continue
		}
		if err := rt.Engine.Registry().Save(ctx, &profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing %s: %v\n", profile.ID, err)
			os.Exit(1)
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", args[0], err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d profile(s).\n", loaded)
}

func init() {
	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsShowCmd)
	groupsCmd.AddCommand(groupsSeedCmd)
}
