package gen

import (
	"io"
	"text/template"
)

// renderer abstracts template execution for render.
type renderer interface {
	Execute(w io.Writer, data any) error
}

// Template data for the capabilities file.

type capabilitiesData struct {
	PackageName  string
	Capabilities []capabilityIface
}

type capabilityIface struct {
	Component    string
	ConsumerName string
	ProviderName string
	Operations   []operationSig
}

type operationSig struct {
	MethodName string
	Returns    string
}

// Template data for a context file.

type contextData struct {
	PackageName      string
	DispatchImport   string
	ContextName      string
	TypeName         string
	GenerateComments bool
	Accessors        []accessorMethod
	Pairs            []pairMethods
}

type accessorMethod struct {
	Name       string
	MethodName string
	Body       string
}

type pairMethods struct {
	Component  string
	Providers  string
	Route      string
	Wiring     string
	Operations []operationImpl
}

type operationImpl struct {
	Name       string
	MethodName string
	Returns    string
	Body       string
}

var capabilitiesTemplate = template.Must(template.New("capabilities").Parse(`// Code generated by capwire-generator. DO NOT EDIT.

package {{.PackageName}}

{{range .Capabilities}}{{$cap := .}}// {{.ConsumerName}} is the consumer form of capability "{{.Component}}".
type {{.ConsumerName}} interface {
{{range .Operations}}	{{.MethodName}}() {{.Returns}}
{{end}}}

// {{.ProviderName}} is the provider form of capability "{{.Component}}".
type {{.ProviderName}} interface {
{{range .Operations}}	Provide{{.MethodName}}(subject {{$cap.ConsumerName}}) {{.Returns}}
{{end}}}

{{end}}`))

var contextTemplate = template.Must(template.New("context").Parse(`// Code generated by capwire-generator. DO NOT EDIT.

package {{.PackageName}}

import (
	"{{.DispatchImport}}"
)

{{$ctx := .}}{{range .Accessors}}{{if $ctx.GenerateComments}}// {{.MethodName}} projects accessor "{{.Name}}" of {{$ctx.TypeName}}.
{{end}}func (c {{$ctx.TypeName}}) {{.MethodName}}() float64 {
	return {{.Body}}
}

{{end}}{{range .Pairs}}{{$pair := .}}{{range .Operations}}{{if $ctx.GenerateComments}}// {{.MethodName}} computes operation "{{.Name}}" of capability "{{$pair.Component}}".
// Wiring: {{$pair.Wiring}}.
{{end}}func (c {{$ctx.TypeName}}) {{.MethodName}}() {{.Returns}} {
	return {{.Body}}
}

{{end}}{{end}}func init() {
{{range .Pairs}}	dispatch.MustRegister({{$ctx.ContextName | printf "%q"}}, {{.Component | printf "%q"}}, dispatch.Entry{
		Providers: []string{ {{.Providers}} },
		Route:     {{.Route | printf "%q"}},
		Ops: map[string]dispatch.Op{
{{range .Operations}}			{{.Name | printf "%q"}}: func(subject any) any { return subject.({{$ctx.TypeName}}).{{.MethodName}}() },
{{end}}		},
	})
{{end}}}
`))
