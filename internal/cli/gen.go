package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"capwire-generator/internal/gen"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Resolve the wiring and generate dispatch code",
	RunE:  runGen,
}

func init() {
	genCmd.Flags().StringP("output", "o", "", "output directory for generated files")
	genCmd.Flags().StringP("package", "p", "", "package name for generated files")

	_ = viper.BindPFlag("output", genCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("package", genCmd.Flags().Lookup("package"))

	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	res, err := runPipeline()
	if err != nil {
		return err
	}

	printDiagnostics(res.diags)

	if res.failed() {
		printSummary(res)

		return fmt.Errorf("cannot generate: wiring did not resolve")
	}

	cfg := gen.DefaultGeneratorConfig()
	cfg.OutputDir = viper.GetString("output")

	if pkg := viper.GetString("package"); pkg != "" {
		cfg.PackageName = pkg
	}

	files, err := gen.NewGenerator(cfg, res.reg).Generate(res.plan)
	if err != nil {
		return err
	}

	if err := gen.WriteFiles(files, cfg.OutputDir); err != nil {
		return err
	}

	for _, f := range files {
		fmt.Println(okStyle.Render("wrote"), f.Filename)
	}

	printSummary(res)

	return nil
}
