package prism

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// ConfigError reports a configuration file that does not match the node
// schema: syntax errors, unknown or missing attributes, bad literal values.
type ConfigError struct {
	Filename string
	Diags    hcl.Diagnostics
}

func (e *ConfigError) Error() string {
	if e.Filename == "" {
		return "invalid config: " + e.Diags.Error()
	}
	return fmt.Sprintf("invalid config %s: %s", e.Filename, e.Diags.Error())
}

func (e *ConfigError) Unwrap() error { return e.Diags }

// ResolutionError reports a node reference that cannot be bound: a missing
// node, a duplicate name, or a link whose target produces an incompatible
// value.
type ResolutionError struct {
	Node   string // node holding the reference
	Field  string // attribute holding the reference
	Ref    string // referenced name
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("node %q: %s %q", e.Node, e.Reason, e.Ref)
	}
	return fmt.Sprintf("node %q: %s: %s %q", e.Node, e.Field, e.Reason, e.Ref)
}

// CycleError reports a dependency cycle. Nodes lists exactly the nodes on
// the cycle, in reference order.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	path := append(append([]string(nil), e.Nodes...), e.Nodes[0])
	return "dependency cycle: " + strings.Join(path, " -> ")
}

// ShaderCompileError reports a fragment program the device rejected.
type ShaderCompileError struct {
	Path       string
	Diagnostic string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("compiling %s: %s", e.Path, e.Diagnostic)
}

// ShaderLinkError reports a vertex and fragment pair that compile apart but
// cannot be combined into one program.
type ShaderLinkError struct {
	VertexPath   string
	FragmentPath string
	Diagnostic   string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("linking %s with %s: %s", e.VertexPath, e.FragmentPath, e.Diagnostic)
}

// ResourceError reports a failed allocation or load of a GPU resource.
type ResourceError struct {
	Node string
	Op   string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("node %q: %s: %v", e.Node, e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
