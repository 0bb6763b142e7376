package resolve

import (
	"fmt"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/common"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/expr"
	"capwire-generator/internal/match"
	"capwire-generator/internal/schema"
)

// projector resolves accessor names against one context: explicit projections
// first, then automatic field derivation when the context opts in, then
// failure with suggestions. Plans are memoized so a diamond of computed
// projections resolves each leaf once.
type projector struct {
	decl  *schema.ContextDecl
	typ   *analyze.TypeInfo
	diags *diagnostic.Diagnostics

	maxCandidates int

	plans      map[string]*AccessorPlan
	inProgress map[string]bool
}

func newProjector(
	decl *schema.ContextDecl,
	typ *analyze.TypeInfo,
	maxCandidates int,
	diags *diagnostic.Diagnostics,
) *projector {
	return &projector{
		decl:          decl,
		typ:           typ,
		diags:         diags,
		maxCandidates: maxCandidates,
		plans:         make(map[string]*AccessorPlan),
		inProgress:    make(map[string]bool),
	}
}

// resolve returns the plan for an accessor, or nil when it cannot be
// projected. Each failure is reported once per accessor.
func (pj *projector) resolve(name, pair string) *AccessorPlan {
	if plan, ok := pj.plans[name]; ok {
		return plan
	}

	if pj.inProgress[name] {
		pj.diags.AddError(diagnostic.CodeMissingAccessor,
			fmt.Sprintf("accessor %q of context %q is defined in terms of itself", name, pj.decl.Name),
			pair, name)
		pj.plans[name] = nil

		return nil
	}

	pj.inProgress[name] = true
	plan := pj.resolveUncached(name, pair)
	delete(pj.inProgress, name)

	pj.plans[name] = plan

	return plan
}

func (pj *projector) resolveUncached(name, pair string) *AccessorPlan {
	if proj := pj.projection(name); proj != nil {
		if proj.IsComputed() {
			return pj.resolveComputed(name, proj, pair)
		}

		return pj.resolveExplicitField(name, proj, pair)
	}

	if pj.decl.DeriveFields {
		if plan := pj.deriveField(name); plan != nil {
			return plan
		}
	}

	pj.diags.AddErrorWithCandidates(diagnostic.CodeMissingAccessor,
		fmt.Sprintf("accessor %q cannot be projected onto context %q", name, pj.decl.Name),
		pair, name,
		match.Suggest(name, pj.projectionPool(), pj.maxCandidates))

	return nil
}

func (pj *projector) projection(name string) *schema.ProjectionDecl {
	for i := range pj.decl.Projections {
		if pj.decl.Projections[i].Accessor == name {
			return &pj.decl.Projections[i]
		}
	}

	return nil
}

// resolveExplicitField handles the "accessor: Field" form. The named field
// must exist on the context type exactly.
func (pj *projector) resolveExplicitField(name string, proj *schema.ProjectionDecl, pair string) *AccessorPlan {
	field := pj.field(proj.Field)
	if field == nil {
		pj.diags.AddErrorWithCandidates(diagnostic.CodeMissingAccessor,
			fmt.Sprintf("projection for accessor %q names field %q, which context %q does not store",
				name, proj.Field, pj.decl.Name),
			pair, name,
			match.Suggest(proj.Field, pj.fieldNames(), pj.maxCandidates))

		return nil
	}

	return &AccessorPlan{
		Name:     name,
		Kind:     AccessorField,
		Field:    field.Name,
		Expr:     &expr.Ident{Name: field.Name},
		Explicit: true,
	}
}

// resolveComputed handles the expression form: every identifier in the
// expression is itself an accessor, resolved recursively and inlined so the
// resulting tree refers only to stored fields.
func (pj *projector) resolveComputed(name string, proj *schema.ProjectionDecl, pair string) *AccessorPlan {
	node, err := expr.Parse(proj.Expr)
	if err != nil {
		// Unparseable projections were rejected during validation.
		pj.diags.AddError(diagnostic.CodeMissingAccessor,
			fmt.Sprintf("projection for accessor %q has an invalid expression: %v", name, err),
			pair, name)

		return nil
	}

	subst := make(map[string]expr.Node)

	ok := true

	for _, dep := range expr.Idents(node) {
		depPlan := pj.resolve(dep, pair)
		if depPlan == nil {
			ok = false

			continue
		}

		subst[dep] = depPlan.Expr
	}

	if !ok {
		return nil
	}

	return &AccessorPlan{
		Name:     name,
		Kind:     AccessorComputed,
		Expr:     expr.Substitute(node, subst, nil),
		Explicit: true,
	}
}

// deriveField matches the accessor against stored fields by normalized name.
// Exactly one match derives a plan; several matches are treated as no match
// because derivation must never guess.
func (pj *projector) deriveField(name string) *AccessorPlan {
	var matches []*analyze.FieldInfo

	for i := range pj.fields() {
		f := &pj.fields()[i]
		if f.Exported && match.SameIdent(name, f.Name) {
			matches = append(matches, f)
		}
	}

	if !common.IsSingle(matches) {
		return nil
	}

	return &AccessorPlan{
		Name:  name,
		Kind:  AccessorField,
		Field: matches[0].Name,
		Expr:  &expr.Ident{Name: matches[0].Name},
	}
}

func (pj *projector) fields() []analyze.FieldInfo {
	if pj.typ == nil {
		return nil
	}

	return pj.typ.Fields
}

func (pj *projector) field(name string) *analyze.FieldInfo {
	for i := range pj.fields() {
		if pj.fields()[i].Name == name {
			return &pj.fields()[i]
		}
	}

	return nil
}

func (pj *projector) fieldNames() []string {
	fields := pj.fields()
	names := make([]string, 0, len(fields))

	for i := range fields {
		if fields[i].Exported {
			names = append(names, fields[i].Name)
		}
	}

	return names
}

// projectionPool is the suggestion pool for a failed accessor: declared
// projections plus exported field names.
func (pj *projector) projectionPool() []string {
	pool := pj.fieldNames()
	for i := range pj.decl.Projections {
		pool = append(pool, pj.decl.Projections[i].Accessor)
	}

	return pool
}

// resolvable reports whether an accessor would resolve, without recording
// diagnostics. Used by eligibility dry runs on the implicit route.
func (pj *projector) resolvable(name string) bool {
	if plan, ok := pj.plans[name]; ok {
		return plan != nil
	}

	if pj.inProgress[name] {
		return false
	}

	if proj := pj.projection(name); proj != nil {
		if !proj.IsComputed() {
			return pj.field(proj.Field) != nil
		}

		node, err := expr.Parse(proj.Expr)
		if err != nil {
			return false
		}

		pj.inProgress[name] = true
		defer delete(pj.inProgress, name)

		for _, dep := range expr.Idents(node) {
			if !pj.resolvable(dep) {
				return false
			}
		}

		return true
	}

	return pj.decl.DeriveFields && pj.deriveField(name) != nil
}
