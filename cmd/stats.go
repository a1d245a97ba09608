package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsReset bool

var statsCmd = &cobra.Command{
	Use:   "stats [tool]",
	Short: "Show cumulative tool usage, optionally for a single tool",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "zero the named tool's counters")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	_, counter, err := newStore()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if statsReset {
		if len(args) == 0 {
			return fmt.Errorf("--reset requires a tool name")
		}
		if err := counter.Reset(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Counters for %s reset.\n", args[0])
		return nil
	}

	if len(args) == 1 {
		stats, err := counter.ToolStats(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%-28s %8d calls %10d in %10d out\n",
			args[0], stats.Calls, stats.TokensIn, stats.TokensOut)
		return nil
	}

	all, err := counter.AllStats(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No tool usage recorded yet.")
		return nil
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := all[name]
		fmt.Printf("%-28s %8d calls %10d in %10d out\n",
			name, stats.Calls, stats.TokensIn, stats.TokensOut)
	}
	return nil
}
