package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/resolve"
)

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pairStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

func printError(err error) {
	fmt.Fprintln(os.Stderr, errStyle.Render("error:"), err)
}

// printDiagnostics renders all accumulated diagnostics, errors first.
func printDiagnostics(d diagnostic.Diagnostics) {
	for _, diag := range d.Errors {
		printDiagnostic(errStyle.Render("error"), diag)
	}

	for _, diag := range d.Warnings {
		printDiagnostic(warnStyle.Render("warning"), diag)
	}

	for _, diag := range d.Infos {
		printDiagnostic(subtleStyle.Render("info"), diag)
	}
}

func printDiagnostic(label string, diag diagnostic.Diagnostic) {
	var sb strings.Builder

	sb.WriteString(label)
	sb.WriteString(" ")

	if diag.Pair != "" {
		sb.WriteString(pairStyle.Render("[" + diag.Pair + "]"))
		sb.WriteString(" ")
	}

	if diag.Path != "" {
		sb.WriteString(diag.Path + ": ")
	}

	sb.WriteString(diag.Message)

	if diag.Code != "" {
		sb.WriteString(" " + subtleStyle.Render("("+diag.Code+")"))
	}

	fmt.Println(sb.String())

	if len(diag.Candidates) > 0 {
		fmt.Println(subtleStyle.Render("  candidates: " + strings.Join(diag.Candidates, ", ")))
	}
}

func printSummary(res *buildResult) {
	total, specialized := 0, 0

	if res.plan != nil {
		for i := range res.plan.Contexts {
			for j := range res.plan.Contexts[i].Pairs {
				total++

				if res.plan.Contexts[i].Pairs[j].State == resolve.StateSpecialized {
					specialized++
				}
			}
		}
	}

	line := fmt.Sprintf("%d file(s), %d pair(s), %d specialized", len(res.paths), total, specialized)
	if res.failed() {
		fmt.Println(errStyle.Render("FAIL"), line,
			errStyle.Render(fmt.Sprintf("(%d error(s))", len(res.diags.Errors))))
	} else {
		fmt.Println(okStyle.Render("OK"), line)
	}
}
