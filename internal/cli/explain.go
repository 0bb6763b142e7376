package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"capwire-generator/internal/common"
	"capwire-generator/internal/resolve"
)

var dumpFlag bool

var explainCmd = &cobra.Command{
	Use:   "explain [context] [capability]",
	Short: "Show how each pair resolved and what it specialized to",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().BoolVar(&dumpFlag, "dump", false,
		"dump the raw resolved plan for debugging")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	res, err := runPipeline()
	if err != nil {
		return err
	}

	if res.plan == nil {
		printDiagnostics(res.diags)

		return fmt.Errorf("wiring did not validate")
	}

	if dumpFlag {
		spew.Fdump(cmd.OutOrStdout(), res.plan)

		return nil
	}

	for i := range res.plan.Contexts {
		ctx := &res.plan.Contexts[i]
		if len(args) > 0 && ctx.Name != args[0] {
			continue
		}

		fmt.Println(pairStyle.Render(ctx.Name), subtleStyle.Render(ctx.Decl.Type))
		explainSlots(ctx)

		for j := range ctx.Pairs {
			pair := &ctx.Pairs[j]
			if len(args) > 1 && pair.Component != args[1] {
				continue
			}

			explainPair(pair)
		}
	}

	printDiagnostics(res.diags)

	if res.failed() {
		return fmt.Errorf("wiring check failed")
	}

	return nil
}

func explainSlots(ctx *resolve.ResolvedContext) {
	for _, name := range common.SortedKeys(ctx.Slots) {
		slot := ctx.Slots[name]

		line := fmt.Sprintf("  slot %s = %s", slot.Name, slot.TypeRef)
		if slot.Family != "" {
			line += subtleStyle.Render(" (family " + slot.Family + ")")
		}

		fmt.Println(line)
	}
}

func explainPair(pair *resolve.ResolvedPair) {
	state := okStyle
	if pair.State != resolve.StateSpecialized {
		state = errStyle
	}

	fmt.Printf("  %s -> %s %s\n",
		pair.Component,
		state.Render(pair.State.String()),
		subtleStyle.Render("("+pair.Explanation+")"))

	for _, op := range common.SortedKeys(pair.Operations) {
		fmt.Printf("    %s = %s\n", op, pair.Operations[op])
	}

	if len(pair.Candidates) > 0 {
		fmt.Println(subtleStyle.Render("    candidates: " + fmt.Sprint(pair.Candidates)))
	}
}
