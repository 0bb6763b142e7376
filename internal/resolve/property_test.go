package resolve

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/schema"
)

// genWiring draws a random universe of area providers plus one context with a
// random field set, all built from a small accessor vocabulary so that
// eligibility, ambiguity, and missing outcomes are all reachable.
func genWiring(t *rapid.T) (*schema.WiringFile, *analyze.TypeGraph) {
	vocab := []string{"width", "height", "radius", "side"}

	wf := &schema.WiringFile{
		Capabilities: []schema.CapabilityDecl{{
			Name:       "area",
			Operations: []schema.OperationDecl{{Name: "area", Returns: "float64"}},
		}},
	}

	providerCount := rapid.IntRange(0, 4).Draw(t, "providers")
	for i := 0; i < providerCount; i++ {
		accessors := rapid.SliceOfNDistinct(rapid.SampledFrom(vocab), 1, len(vocab), rapid.ID[string]).
			Draw(t, "accessors")

		wf.Providers = append(wf.Providers, schema.ProviderDecl{
			Name:       "P" + string(rune('A'+i)),
			Capability: "area",
			Body:       strings.Join(accessors, " + "),
			Requires:   schema.RequiresDecl{Accessors: accessors},
		})
	}

	fields := rapid.SliceOfNDistinct(rapid.SampledFrom(vocab), 0, len(vocab), rapid.ID[string]).
		Draw(t, "fields")

	goFields := make([]string, len(fields))
	for i, f := range fields {
		goFields[i] = schema.Exported(f)
	}

	wf.Contexts = []schema.ContextDecl{{
		Name:         "Shape",
		Type:         "shapes.Shape",
		DeriveFields: true,
		Uses:         schema.StringArray{"area"},
	}}

	g := analyze.NewTypeGraph()
	addStruct(g, "Shape", goFields...)

	return wf, g
}

func resolveFor(t *rapid.T, wf *schema.WiringFile, g *analyze.TypeGraph, parallelism int) *Plan {
	reg, err := registry.FromFile(wf)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Parallelism = parallelism

	plan, err := NewResolver(reg, g, cfg).Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	return plan
}

func TestResolveDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wf, g := genWiring(t)

		first := resolveFor(t, wf, g, 1)
		second := resolveFor(t, wf, g, 4)

		if len(first.Contexts) != len(second.Contexts) {
			t.Fatalf("context count differs: %d vs %d", len(first.Contexts), len(second.Contexts))
		}

		if first.Diagnostics.HasErrors() != second.Diagnostics.HasErrors() {
			t.Fatalf("error outcomes differ between runs")
		}

		for i := range first.Contexts {
			a, b := first.Contexts[i], second.Contexts[i]
			for j := range a.Pairs {
				if a.Pairs[j].State != b.Pairs[j].State {
					t.Fatalf("pair %s state differs: %v vs %v", a.Pairs[j].Key(), a.Pairs[j].State, b.Pairs[j].State)
				}

				if a.Pairs[j].Provider() != b.Pairs[j].Provider() {
					t.Fatalf("pair %s provider differs", a.Pairs[j].Key())
				}
			}
		}
	})
}

func TestResolveOutcomeInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wf, g := genWiring(t)

		plan := resolveFor(t, wf, g, 1)

		ctx := plan.Context("Shape")
		if ctx == nil {
			t.Fatalf("context not resolved")
		}

		pair := ctx.Pair("area")
		if pair == nil {
			t.Fatalf("used pair not in plan")
		}

		switch pair.State {
		case StateSpecialized:
			// A specialized pair must evaluate against the stored fields.
			vals := map[string]float64{}
			for _, f := range ctx.Type.Fields {
				vals[f.Name] = 1
			}

			if _, err := pair.Eval("area", vals); err != nil {
				t.Fatalf("specialized pair does not evaluate: %v", err)
			}

			if plan.Diagnostics.HasErrors() {
				t.Fatalf("specialized pair alongside errors")
			}

		case StateAmbiguous:
			if len(pair.Candidates) < 2 {
				t.Fatalf("ambiguous pair with %d candidates", len(pair.Candidates))
			}

		case StateMissing:
			if !plan.Diagnostics.HasErrors() {
				t.Fatalf("missing pair without an error diagnostic")
			}

		default:
			t.Fatalf("pair stuck in state %v", pair.State)
		}
	})
}
