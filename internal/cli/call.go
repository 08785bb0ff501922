package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stakewatch/stakewatch/internal/config"
	"github.com/stakewatch/stakewatch/internal/ops"
	"github.com/stakewatch/stakewatch/internal/server"
)

var callArgs string

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the available analysis operations",
	Run: func(cmd *cobra.Command, args []string) {
		rt, ok := newRuntime()
		if !ok {
			os.Exit(1)
		}
		defer rt.Close()

		printHeader("Operations")
		for _, op := range rt.Ops.List() {
			color.Green("  %s", op.Name())
			fmt.Printf("    %s\n", op.Description())
		}
	},
}

var callCmd = &cobra.Command{
	Use:   "call <operation>",
	Short: "Invoke one analysis operation with JSON arguments",
	Args:  cobra.ExactArgs(1),
	Run:   runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callArgs, "args", "a", "{}", "Operation arguments as a JSON object")
}

func runCall(cmd *cobra.Command, args []string) {
	var params map[string]any
	if err := json.Unmarshal([]byte(callArgs), &params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: --args must be a JSON object: %v\n", err)
		os.Exit(1)
	}

	rt, ok := newRuntime()
	if !ok {
		os.Exit(1)
	}
	defer rt.Close()

	ctx := context.Background()
	if secs := rt.Config.Analysis.RequestTimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	out, err := rt.Ops.Execute(ctx, args[0], params)
	if err != nil {
		var opErr *ops.Error
		if errors.As(err, &opErr) {
			fmt.Fprintln(os.Stderr, opErr.Envelope())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Println(out)
}

// newRuntime loads configuration and builds the analysis stack, reporting
// failures on stderr.
func newRuntime() (*server.Runtime, bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config warning: %v (using defaults)\n", err)
	}
	rt, err := server.NewRuntime(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		return nil, false
	}
	return rt, true
}
