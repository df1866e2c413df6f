// Package extern parses the extern descriptor JSON format and answers the
// queries the intrinsic resolver and inline-extern pass need: resolve a
// module specifier, walk a namespace chain, fetch a function's per-argument
// flags, or fetch a const's literal value.
package extern

import (
	"encoding/json"
	"fmt"
)

// ArgFlag is one of the two call-site annotations a function export can
// attach to a positional argument.
type ArgFlag string

const (
	FlagHoist ArgFlag = "hoist"
	FlagScope ArgFlag = "scope"
)

// ArgSpec is the set of flags attached to one positional argument.
type ArgSpec struct {
	Hoist bool
	Scope bool
}

func (a ArgSpec) Empty() bool { return !a.Hoist && !a.Scope }

// DescriptorKind tags the closed sum type an export descriptor resolves to.
type DescriptorKind int

const (
	KindConst DescriptorKind = iota
	KindFunction
	KindNamespace
)

// Descriptor is a tagged-variant export descriptor: exactly one of the three
// payload fields is meaningful, selected by Kind.
type Descriptor struct {
	Kind DescriptorKind

	// KindConst
	Value json.RawMessage

	// KindFunction
	Arguments []ArgSpec

	// KindNamespace
	Exports map[string]*Descriptor
}

// Namespace looks up a nested name inside a namespace descriptor. Returns false
// if d is not a namespace or name is absent — used to walk member-expression
// chains (a.b.c) against the descriptor tree.
func (d *Descriptor) Namespace(name string) (*Descriptor, bool) {
	if d == nil || d.Kind != KindNamespace {
		return nil, false
	}
	child, ok := d.Exports[name]
	return child, ok
}

// ModuleDescriptor is the root of one specifier's descriptor tree.
type ModuleDescriptor struct {
	Exports map[string]*Descriptor
}

// Export looks up a top-level exported name.
func (m *ModuleDescriptor) Export(name string) (*Descriptor, bool) {
	if m == nil {
		return nil, false
	}
	d, ok := m.Exports[name]
	return d, ok
}

// Registry holds the imported extern descriptor tree, keyed by literal
// specifier string (no module resolution is performed — §3).
type Registry struct {
	modules map[string]*ModuleDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*ModuleDescriptor)}
}

// Resolve looks up a module by its exact specifier string.
func (r *Registry) Resolve(specifier string) (*ModuleDescriptor, bool) {
	m, ok := r.modules[specifier]
	return m, ok
}

// FormatError is ExternsFormatError from the error-kinds design: malformed
// extern JSON or a conflicting descriptor. importExterns leaves the registry
// it's applied to unchanged when this is returned.
type FormatError struct {
	Specifier string
	Detail    string
}

func (e *FormatError) Error() string {
	if e.Specifier != "" {
		return fmt.Sprintf("extern: %s (module %q)", e.Detail, e.Specifier)
	}
	return fmt.Sprintf("extern: %s", e.Detail)
}

// rawModule and rawDescriptor mirror the JSON shape before validation.
type rawModule struct {
	Type    string                    `json:"type"`
	Exports map[string]rawDescriptor  `json:"exports"`
}

type rawDescriptor struct {
	Type      string            `json:"type"`
	Value     json.RawMessage   `json:"value"`
	Arguments []json.RawMessage `json:"arguments"`
	Exports   map[string]rawDescriptor `json:"exports"`
}

// Parse decodes an extern JSON document into a fresh Registry without
// mutating r. Returns a *FormatError on any structural problem so the
// caller (importExterns) can discard the result and leave its current
// registry untouched.
func Parse(data []byte) (*Registry, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &FormatError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	reg := NewRegistry()
	for specifier, raw := range top {
		mod, err := parseModule(raw)
		if err != nil {
			return nil, &FormatError{Specifier: specifier, Detail: err.Error()}
		}
		reg.modules[specifier] = mod
	}
	return reg, nil
}

// parseModule accepts either the explicit {"type":"module","exports":{...}}
// form or the shorthand where the module value's object IS the exports map.
func parseModule(raw json.RawMessage) (*ModuleDescriptor, error) {
	var probe struct {
		Type    string          `json:"type"`
		Exports json.RawMessage `json:"exports"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("module value must be an object: %w", err)
	}

	exportsRaw := probe.Exports
	if exportsRaw == nil {
		// Shorthand: the object itself is the exports map.
		exportsRaw = raw
	}

	var rawExports map[string]rawDescriptor
	if err := json.Unmarshal(exportsRaw, &rawExports); err != nil {
		return nil, fmt.Errorf("exports must be an object of descriptors: %w", err)
	}

	exports := make(map[string]*Descriptor, len(rawExports))
	for name, rd := range rawExports {
		d, err := parseDescriptor(name, rd)
		if err != nil {
			return nil, err
		}
		exports[name] = d
	}
	return &ModuleDescriptor{Exports: exports}, nil
}

func parseDescriptor(name string, rd rawDescriptor) (*Descriptor, error) {
	switch rd.Type {
	case "const":
		if rd.Value == nil {
			return nil, fmt.Errorf("export %q: const descriptor missing value", name)
		}
		return &Descriptor{Kind: KindConst, Value: rd.Value}, nil

	case "function":
		args := make([]ArgSpec, 0, len(rd.Arguments))
		for i, rawArg := range rd.Arguments {
			spec, err := parseArgSpec(rawArg)
			if err != nil {
				return nil, fmt.Errorf("export %q: argument %d: %w", name, i, err)
			}
			args = append(args, spec)
		}
		return &Descriptor{Kind: KindFunction, Arguments: args}, nil

	case "namespace":
		exports := make(map[string]*Descriptor, len(rd.Exports))
		for childName, childRaw := range rd.Exports {
			d, err := parseDescriptor(childName, childRaw)
			if err != nil {
				return nil, err
			}
			exports[childName] = d
		}
		return &Descriptor{Kind: KindNamespace, Exports: exports}, nil

	default:
		return nil, fmt.Errorf("export %q: unknown descriptor type %q", name, rd.Type)
	}
}

// parseArgSpec accepts either a JSON array of flag strings (["hoist"]) or an
// empty array/null for no flags. A flag appearing twice, or a flag outside
// {hoist, scope}, is a contradictory ArgSpec and an error.
func parseArgSpec(raw json.RawMessage) (ArgSpec, error) {
	var flags []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &flags); err != nil {
			return ArgSpec{}, fmt.Errorf("argument spec must be an array of flag strings: %w", err)
		}
	}

	var spec ArgSpec
	for _, f := range flags {
		switch ArgFlag(f) {
		case FlagHoist:
			if spec.Hoist {
				return ArgSpec{}, fmt.Errorf("duplicate flag %q", f)
			}
			spec.Hoist = true
		case FlagScope:
			if spec.Scope {
				return ArgSpec{}, fmt.Errorf("duplicate flag %q", f)
			}
			spec.Scope = true
		default:
			return ArgSpec{}, fmt.Errorf("unrecognized flag %q", f)
		}
	}
	return spec, nil
}
