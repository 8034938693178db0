// Package catalog holds the static registry of block definitions.
//
// The catalog is immutable: it is built once at process start and serves
// pure lookups. "Not found" is the only failure mode, and callers treat it
// as a validation error rather than an exceptional condition.
package catalog

import "strings"

// Category classifies a block. The set is closed.
type Category string

const (
	CategoryPermission Category = "permission"
	CategoryDelegation Category = "delegation"
	CategoryMagic      Category = "magic"
	CategoryProgram    Category = "program"
	CategoryState      Category = "state"
)

// InputType tags the value type a block input accepts.
type InputType string

const (
	InputPubkey InputType = "pubkey"
	InputString InputType = "string"
	InputNumber InputType = "number"
	InputBool   InputType = "bool"
	InputJSON   InputType = "json"
	InputArray  InputType = "array"
)

// Input describes one typed input of a block.
type Input struct {
	Name        string    `json:"name"`
	Type        InputType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
}

// Output describes one typed output of a block.
type Output struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Definition is one immutable block definition.
type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Inputs      []Input  `json:"inputs"`
	Outputs     []Output `json:"outputs"`
	Tags        []string `json:"tags,omitempty"`
}

// Input returns the input spec with the given name, or nil.
func (d *Definition) Input(name string) *Input {
	for i := range d.Inputs {
		if d.Inputs[i].Name == name {
			return &d.Inputs[i]
		}
	}
	return nil
}

// Catalog is a read-only index over a set of block definitions.
type Catalog struct {
	blocks []Definition
	byID   map[string]*Definition
}

// New builds a catalog from the given definitions.
func New(blocks []Definition) *Catalog {
	c := &Catalog{
		blocks: blocks,
		byID:   make(map[string]*Definition, len(blocks)),
	}
	for i := range c.blocks {
		c.byID[c.blocks[i].ID] = &c.blocks[i]
	}
	return c
}

var defaultCatalog = New(registry)

// Default returns the process-wide catalog of built-in blocks.
func Default() *Catalog { return defaultCatalog }

// Get returns the definition for id, or nil if the id is unknown.
func (c *Catalog) Get(id string) *Definition {
	return c.byID[id]
}

// All returns every definition in registration order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// ByCategory returns every definition in the given category.
func (c *Catalog) ByCategory(cat Category) []Definition {
	var out []Definition
	for _, b := range c.blocks {
		if b.Category == cat {
			out = append(out, b)
		}
	}
	return out
}

// Search returns definitions whose name, description, or tags contain the
// query, case-insensitively.
func (c *Catalog) Search(query string) []Definition {
	q := strings.ToLower(query)
	var out []Definition
	for _, b := range c.blocks {
		if strings.Contains(strings.ToLower(b.Name), q) ||
			strings.Contains(strings.ToLower(b.Description), q) ||
			tagsMatch(b.Tags, q) {
			out = append(out, b)
		}
	}
	return out
}

func tagsMatch(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
