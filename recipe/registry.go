package recipe

import (
	"fmt"
	"os"
	"sync"

	"github.com/cooldogedev/prism/inventory"
	"gopkg.in/yaml.v3"
)

// File is the layout of a recipe file.
type File struct {
	Crafting    []Crafting    `yaml:"crafting"`
	Stonecutter []Stonecutter `yaml:"stonecutter"`
	Smithing    []Smithing    `yaml:"smithing"`
	Multi       []Multi       `yaml:"multi"`
	Trades      []Trade       `yaml:"trades"`
}

// Registry holds every recipe known to the server and matches transaction contents against them.
type Registry struct {
	mu   sync.RWMutex
	file File
}

// NewRegistry ...
func NewRegistry() *Registry {
	return &Registry{}
}

// Load reads a YAML recipe file and adds its recipes to the registry.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.LoadBytes(data)
}

// LoadBytes adds the recipes of the YAML document passed.
func (r *Registry) LoadBytes(data []byte) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse recipes: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.file.Crafting = append(r.file.Crafting, f.Crafting...)
	r.file.Stonecutter = append(r.file.Stonecutter, f.Stonecutter...)
	r.file.Smithing = append(r.file.Smithing, f.Smithing...)
	r.file.Multi = append(r.file.Multi, f.Multi...)
	r.file.Trades = append(r.file.Trades, f.Trades...)
	return nil
}

// Len returns the total number of recipes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := r.file
	return len(f.Crafting) + len(f.Stonecutter) + len(f.Smithing) + len(f.Multi) + len(f.Trades)
}

// MatchCrafting reports whether a crafting recipe turns inputs into output.
func (r *Registry) MatchCrafting(output inventory.Item, inputs []inventory.Item) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.file.Crafting {
		if c.Output.matches(output) && output.Count == c.Output.count() && matchMultiset(c.Inputs, inputs) {
			return true
		}
	}
	return false
}

// MatchMulti reports whether a special recipe produces output.
func (r *Registry) MatchMulti(output inventory.Item, _ []inventory.Item) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.file.Multi {
		if m.Output.matches(output) {
			return true
		}
	}
	return false
}

// MatchStonecutter reports whether the stonecutter turns input into output.
func (r *Registry) MatchStonecutter(input, output inventory.Item) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.file.Stonecutter {
		if s.Input.matches(input) && s.Output.matches(output) && output.Count == s.Output.count()*input.Count {
			return true
		}
	}
	return false
}

// MatchSmithing returns the result of upgrading equipment with template and ingredient.
func (r *Registry) MatchSmithing(template, equipment, ingredient inventory.Item) (inventory.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.file.Smithing {
		if s.Template.matches(template) && s.Base.matches(equipment) && s.Addition.matches(ingredient) {
			out := s.Output.Item()
			out.NBT = equipment.NBT
			return out, true
		}
	}
	return inventory.Air, false
}

// MatchTrade returns the experience rewarded by the trade turning inputs into output.
func (r *Registry) MatchTrade(inputs []inventory.Item, output inventory.Item) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.file.Trades {
		if !t.Sell.matches(output) {
			continue
		}
		want := []Stack{t.BuyA}
		if t.BuyB != nil {
			want = append(want, *t.BuyB)
		}
		if matchMultiset(want, inputs) {
			return t.RewardExp, true
		}
	}
	return 0, false
}
