package recipe

import (
	"cmp"
	"slices"

	"github.com/cooldogedev/prism/inventory"
)

// AnyMeta matches an item of any meta value.
const AnyMeta = -1

// Stack is an item as written in a recipe file.
type Stack struct {
	ID    int32 `yaml:"id"`
	Meta  int32 `yaml:"meta"`
	Count int   `yaml:"count"`
}

func (s Stack) count() int {
	return max(s.Count, 1)
}

func (s Stack) matches(it inventory.Item) bool {
	return !it.Empty() && it.ID == s.ID && (s.Meta == AnyMeta || uint32(s.Meta) == it.Meta)
}

// Item converts the stack to an inventory item.
func (s Stack) Item() inventory.Item {
	meta := s.Meta
	if meta == AnyMeta {
		meta = 0
	}
	return inventory.NewItem(s.ID, uint32(meta), s.count())
}

// Crafting is a shaped or shapeless crafting recipe. Shape does not matter once the client has
// consumed the ingredients, so both are matched by their input multiset.
type Crafting struct {
	Output Stack   `yaml:"output"`
	Inputs []Stack `yaml:"inputs"`
}

// Stonecutter ...
type Stonecutter struct {
	Input  Stack `yaml:"input"`
	Output Stack `yaml:"output"`
}

// Smithing ...
type Smithing struct {
	Template Stack `yaml:"template"`
	Base     Stack `yaml:"base"`
	Addition Stack `yaml:"addition"`
	Output   Stack `yaml:"output"`
}

// Multi is a special recipe whose result depends on its inputs, such as fireworks. Only the output
// type is checked.
type Multi struct {
	Output Stack `yaml:"output"`
}

// Trade is a villager trade offer.
type Trade struct {
	BuyA      Stack  `yaml:"buy_a"`
	BuyB      *Stack `yaml:"buy_b,omitempty"`
	Sell      Stack  `yaml:"sell"`
	RewardExp int    `yaml:"reward_exp"`
}

// matchMultiset reports whether the non-empty items passed are exactly the inputs, in any order.
func matchMultiset(inputs []Stack, items []inventory.Item) bool {
	type key struct {
		id   int32
		meta uint32
	}
	have := map[key]int{}
	for _, it := range items {
		if !it.Empty() {
			have[key{it.ID, it.Meta}] += it.Count
		}
	}

	// Exact metas first so wildcards do not steal their items.
	inputs = slices.Clone(inputs)
	slices.SortStableFunc(inputs, func(a, b Stack) int {
		return cmp.Compare(b.Meta, a.Meta)
	})
	for _, in := range inputs {
		need := in.count()
		for k, n := range have {
			if need == 0 {
				break
			}
			if k.id != in.ID || (in.Meta != AnyMeta && uint32(in.Meta) != k.meta) {
				continue
			}
			took := min(n, need)
			need -= took
			if have[k] = n - took; have[k] == 0 {
				delete(have, k)
			}
		}
		if need > 0 {
			return false
		}
	}
	return len(have) == 0
}
