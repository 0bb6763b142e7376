package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"capwire-generator/internal/expr"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/resolve"
	"capwire-generator/internal/schema"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// DispatchImport is the import path of the dispatch runtime.
	DispatchImport string
	// GenerateComments enables explanatory comments on generated methods.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:      "shapes",
		OutputDir:        ".",
		DispatchImport:   "capwire-generator/dispatch",
		GenerateComments: true,
	}
}

// Generator generates Go code from a resolved plan.
type Generator struct {
	config GeneratorConfig
	reg    *registry.Registry
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, reg *registry.Registry) *Generator {
	return &Generator{config: config, reg: reg}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "capwire_rect.gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits all files for a plan. The plan must be free of error
// diagnostics; pairs that did not specialize are rejected rather than
// silently skipped.
func (g *Generator) Generate(p *resolve.Plan) ([]GeneratedFile, error) {
	if p.Diagnostics.HasErrors() {
		return nil, fmt.Errorf("plan has unresolved pairs: %w", p.Diagnostics.Error())
	}

	var files []GeneratedFile

	capFile, err := g.generateCapabilities()
	if err != nil {
		return nil, err
	}

	if capFile != nil {
		files = append(files, *capFile)
	}

	for i := range p.Contexts {
		ctx := &p.Contexts[i]
		if len(ctx.Pairs) == 0 {
			continue
		}

		file, err := g.generateContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("generating context %s: %w", ctx.Name, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// generateCapabilities emits the consumer and provider interfaces for every
// declared capability, sorted by name.
func (g *Generator) generateCapabilities() (*GeneratedFile, error) {
	names := g.reg.ComponentNames()
	if len(names) == 0 {
		return nil, nil
	}

	data := capabilitiesData{PackageName: g.config.PackageName}

	for _, name := range names {
		decl := g.reg.Capability(name)
		iface := capabilityIface{
			Component:    decl.Name,
			ConsumerName: decl.ConsumerName,
			ProviderName: decl.ProviderName,
		}

		for _, op := range decl.Operations {
			iface.Operations = append(iface.Operations, operationSig{
				MethodName: schema.Exported(op.Name),
				Returns:    op.Returns,
			})
		}

		data.Capabilities = append(data.Capabilities, iface)
	}

	return g.render("capwire_capabilities.gen.go", capabilitiesTemplate, data)
}

// generateContext emits one file for a resolved context: accessor methods,
// specialized operation methods, and the dispatch registration.
func (g *Generator) generateContext(ctx *resolve.ResolvedContext) (*GeneratedFile, error) {
	typeName := ctx.Decl.Name
	if ctx.Type != nil && ctx.Type.ID.Name != "" {
		typeName = ctx.Type.ID.Name
	}

	data := contextData{
		PackageName:      g.config.PackageName,
		DispatchImport:   g.config.DispatchImport,
		ContextName:      ctx.Name,
		TypeName:         typeName,
		GenerateComments: g.config.GenerateComments,
	}

	taken := g.takenNames(ctx)

	for _, name := range sortedAccessorNames(ctx.Accessors) {
		plan := ctx.Accessors[name]
		if plan == nil {
			continue
		}

		method := schema.Exported(name)
		if taken[method] {
			// A same-named field or operation already provides this path.
			continue
		}

		taken[method] = true

		data.Accessors = append(data.Accessors, accessorMethod{
			Name:       name,
			MethodName: method,
			Body:       renderFieldExpr(plan.Expr),
		})
	}

	for i := range ctx.Pairs {
		pair := &ctx.Pairs[i]
		if pair.State != resolve.StateSpecialized {
			return nil, fmt.Errorf("pair %s is %s, not specialized", pair.Key(), pair.State)
		}

		decl := g.reg.Capability(pair.Component)

		method := pairMethods{
			Component: pair.Component,
			Providers: quoteList(pair.Chain),
			Route:     pair.Route.String(),
			Wiring:    pair.Explanation,
		}

		for _, op := range decl.Operations {
			node := pair.Operations[op.Name]
			if node == nil {
				return nil, fmt.Errorf("pair %s has no specialization for operation %q", pair.Key(), op.Name)
			}

			method.Operations = append(method.Operations, operationImpl{
				Name:       op.Name,
				MethodName: schema.Exported(op.Name),
				Returns:    op.Returns,
				Body:       renderFieldExpr(node),
			})
		}

		data.Pairs = append(data.Pairs, method)
	}

	return g.render(contextFilename(ctx.Name), contextTemplate, data)
}

// takenNames seeds the method-name collision set with the context's stored
// field names and its operation method names.
func (g *Generator) takenNames(ctx *resolve.ResolvedContext) map[string]bool {
	taken := make(map[string]bool)

	if ctx.Type != nil {
		for i := range ctx.Type.Fields {
			taken[ctx.Type.Fields[i].Name] = true
		}
	}

	for i := range ctx.Pairs {
		if decl := g.reg.Capability(ctx.Pairs[i].Component); decl != nil {
			for _, op := range decl.Operations {
				taken[schema.Exported(op.Name)] = true
			}
		}
	}

	return taken
}

func (g *Generator) render(filename string, tmpl renderer, data any) (*GeneratedFile, error) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template for %s: %w", filename, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", filename, err)
	}

	return &GeneratedFile{Filename: filename, Content: formatted}, nil
}

// renderFieldExpr renders an inlined tree as a Go expression over the
// receiver's fields.
func renderFieldExpr(node expr.Node) string {
	return expr.RenderGo(node, func(name string) string {
		return "c." + name
	})
}

func contextFilename(name string) string {
	return "capwire_" + strings.ToLower(name) + ".gen.go"
}

func sortedAccessorNames(plans map[string]*resolve.AccessorPlan) []string {
	names := make([]string, 0, len(plans))
	for name := range plans {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}

	return strings.Join(quoted, ", ")
}
