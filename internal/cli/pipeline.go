package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/resolve"
	"capwire-generator/internal/schema"
)

// buildResult carries everything the commands need after one pipeline run.
type buildResult struct {
	wf    *schema.WiringFile
	paths []string
	graph *analyze.TypeGraph
	reg   *registry.Registry
	plan  *resolve.Plan
	diags diagnostic.Diagnostics
}

// failed reports whether the run produced any error diagnostic.
func (r *buildResult) failed() bool {
	return r.diags.HasErrors()
}

// runPipeline loads, validates, and resolves the wiring declarations. A
// non-nil error means the pipeline could not run at all; resolution failures
// are diagnostics on the result instead.
func runPipeline() (*buildResult, error) {
	res := &buildResult{}

	wf, paths, err := schema.LoadGlob(viper.GetString("wiring"))
	if err != nil {
		return nil, err
	}

	res.wf = wf
	res.paths = paths

	if len(wf.Packages) > 0 {
		graph, err := analyze.NewAnalyzer().LoadPackages(wf.Packages...)
		if err != nil {
			return nil, fmt.Errorf("analyzing packages: %w", err)
		}

		res.graph = graph
	}

	res.diags.Merge(*schema.Validate(wf, res.graph))
	if res.failed() {
		return res, nil
	}

	reg, err := registry.FromFile(wf)
	if err != nil {
		return nil, err
	}

	res.reg = reg

	cfg := resolve.DefaultConfig()
	if p := viper.GetInt("parallelism"); p > 0 {
		cfg.Parallelism = p
	}

	plan, err := resolve.NewResolver(reg, res.graph, cfg).Resolve()
	if err != nil {
		return nil, err
	}

	res.plan = plan
	res.diags.Merge(plan.Diagnostics)

	return res, nil
}
