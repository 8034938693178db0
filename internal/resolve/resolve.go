// Package resolve substitutes runtime-context tokens into execution plans.
//
// Two token forms are recognized in step inputs:
//
//   - a bare reference, "$ctx.path.to.value", which resolves to the raw
//     typed value at that path
//   - a template string containing "{{ path.to.value }}" placeholders,
//     which resolves to a string with each placeholder stringified
//
// A string whose entire trimmed content is a single placeholder behaves
// like a bare reference and keeps the raw value type. Substitution is
// all-or-nothing: any missing path aborts the whole resolution.
package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/flaek-labs/flaek-go/internal/graph"
)

var (
	bareRefPattern     = regexp.MustCompile(`^\$ctx\.(.+)$`)
	placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	bracketPattern     = regexp.MustCompile(`\[\s*(?:"([^"]*)"|'([^']*)'|(\d+))\s*\]`)
)

// MissingError reports a context path that could not be resolved.
type MissingError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingError) Error() string {
	return fmt.Sprintf("context_missing:%s", e.Path)
}

// Resolve returns a copy of plan with every context token in step inputs
// replaced from ctx. The input plan is never mutated; on any missing path
// no plan is returned at all.
func Resolve(plan *graph.Plan, ctx map[string]any) (*graph.Plan, error) {
	doc, err := json.Marshal(ctx)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	steps := make([]graph.Step, len(plan.Steps))
	for i, step := range plan.Steps {
		inputs := make(map[string]any, len(step.Inputs))
		for name, value := range step.Inputs {
			resolved, err := resolveValue(value, doc)
			if err != nil {
				return nil, err
			}
			inputs[name] = resolved
		}
		steps[i] = graph.Step{
			NodeID:    step.NodeID,
			BlockID:   step.BlockID,
			Inputs:    inputs,
			DependsOn: append([]string(nil), step.DependsOn...),
		}
	}

	return &graph.Plan{Steps: steps}, nil
}

func resolveValue(value any, doc []byte) (any, error) {
	switch v := value.(type) {
	case string:
		return resolveString(v, doc)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			resolved, err := resolveValue(elem, doc)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			resolved, err := resolveValue(elem, doc)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func resolveString(s string, doc []byte) (any, error) {
	// Bare reference: raw typed value passes through untouched.
	if m := bareRefPattern.FindStringSubmatch(s); m != nil {
		res, err := lookup(doc, m[1])
		if err != nil {
			return nil, err
		}
		return res.Value(), nil
	}

	// A lone placeholder also keeps the raw value type.
	trimmed := strings.TrimSpace(s)
	if m := placeholderPattern.FindStringSubmatch(trimmed); m != nil && m[0] == trimmed {
		res, err := lookup(doc, m[1])
		if err != nil {
			return nil, err
		}
		return res.Value(), nil
	}

	// Template: every placeholder stringified in place.
	var lookupErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if lookupErr != nil {
			return match
		}
		path := placeholderPattern.FindStringSubmatch(match)[1]
		res, err := lookup(doc, path)
		if err != nil {
			lookupErr = err
			return match
		}
		return stringify(res)
	})
	if lookupErr != nil {
		return nil, lookupErr
	}
	return out, nil
}

func lookup(doc []byte, path string) (gjson.Result, error) {
	normalized := normalizePath(path)
	res := gjson.GetBytes(doc, normalized)
	if !res.Exists() {
		return gjson.Result{}, &MissingError{Path: normalized}
	}
	return res, nil
}

// normalizePath rewrites bracketed accessors (a[0], a["key"]) to the dotted
// form gjson expects (a.0, a.key).
func normalizePath(path string) string {
	normalized := bracketPattern.ReplaceAllStringFunc(path, func(m string) string {
		parts := bracketPattern.FindStringSubmatch(m)
		for _, p := range parts[1:] {
			if p != "" {
				return "." + p
			}
		}
		return "." + parts[3]
	})
	return strings.TrimPrefix(normalized, ".")
}

func stringify(res gjson.Result) string {
	switch res.Type {
	case gjson.Null:
		return "null"
	case gjson.String:
		return res.Str
	default:
		// Numbers, booleans, objects, and arrays keep their literal JSON text.
		return res.Raw
	}
}
