package facts

import (
	"sort"
	"strings"
)

// Set is a collection of distinct facts.
type Set struct {
	facts map[string]Fact
}

// NewSet creates a set holding facts.
func NewSet(facts ...Fact) Set {
	s := Set{facts: make(map[string]Fact, len(facts))}
	for _, f := range facts {
		s.Add(f)
	}
	return s
}

// Add inserts f. Adding a fact twice has no effect.
func (s *Set) Add(f Fact) {
	if s.facts == nil {
		s.facts = make(map[string]Fact)
	}
	s.facts[f.Key()] = f
}

// Len returns the number of facts.
func (s Set) Len() int { return len(s.facts) }

// Has reports whether f is in the set.
func (s Set) Has(f Fact) bool {
	_, ok := s.facts[f.Key()]
	return ok
}

// Facts returns the facts in a stable order.
func (s Set) Facts() []Fact {
	out := make([]Fact, 0, len(s.facts))
	for _, f := range s.facts {
		out = append(out, f)
	}
	sortFacts(out)
	return out
}

// Diff splits the union of two fact sets. The three lists are pairwise
// disjoint and together hold every fact of both sets.
type Diff struct {
	Shared []Fact
	OnlyA  []Fact
	OnlyB  []Fact
}

// Compare diffs a against b.
func Compare(a, b Set) Diff {
	var d Diff
	for k, f := range a.facts {
		if _, ok := b.facts[k]; ok {
			d.Shared = append(d.Shared, f)
		} else {
			d.OnlyA = append(d.OnlyA, f)
		}
	}
	for k, f := range b.facts {
		if _, ok := a.facts[k]; !ok {
			d.OnlyB = append(d.OnlyB, f)
		}
	}
	sortFacts(d.Shared)
	sortFacts(d.OnlyA)
	sortFacts(d.OnlyB)
	return d
}

// Flatten renders facts as [predicate, "arg1 arg2 ..."] pairs.
func Flatten(facts []Fact) [][2]string {
	out := make([][2]string, len(facts))
	for i, f := range facts {
		out[i] = [2]string{f.Predicate, strings.Join(f.Args, " ")}
	}
	return out
}

// Comparison is the serialized fact diff of one manifest pair.
type Comparison struct {
	Intersect     [][2]string `json:"intersect"`
	Spec1NotSpec2 [][2]string `json:"spec1_not_spec2"`
	Spec2NotSpec1 [][2]string `json:"spec2_not_spec1"`
	Spec1Name     string      `json:"spec1_name"`
	Spec2Name     string      `json:"spec2_name"`
}

// NewComparison diffs a (named name1) against b (named name2).
func NewComparison(name1 string, a Set, name2 string, b Set) Comparison {
	d := Compare(a, b)
	return Comparison{
		Intersect:     Flatten(d.Shared),
		Spec1NotSpec2: Flatten(d.OnlyA),
		Spec2NotSpec1: Flatten(d.OnlyB),
		Spec1Name:     name1,
		Spec2Name:     name2,
	}
}

func sortFacts(fs []Fact) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Key() < fs[j].Key() })
}
