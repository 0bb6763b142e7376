// Package main provides the CLI entrypoint for capwire-generator.
//
// capwire-generator is a build-time capability wiring tool that:
//   - Parses Go packages (go/types) to understand context structs
//   - Reads YAML wiring declarations for capabilities, providers, and contexts
//   - Resolves every (context, component) pair to one provider chain
//   - Generates indirection-free dispatch code
package main

import "capwire-generator/internal/cli"

func main() {
	cli.Execute()
}
