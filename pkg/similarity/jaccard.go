package similarity

import "sort"

type set map[string]struct{}

func newSet(items ...string) set {
	s := make(set, len(items))
	for _, item := range items {
		s.add(item)
	}
	return s
}

func (s set) add(item string) { s[item] = struct{}{} }

func (s set) has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s set) intersect(o set) set {
	out := make(set)
	for item := range s {
		if o.has(item) {
			out.add(item)
		}
	}
	return out
}

func (s set) union(o set) set {
	out := make(set, len(s)+len(o))
	for item := range s {
		out.add(item)
	}
	for item := range o {
		out.add(item)
	}
	return out
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets are identical (1.0).
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	shared := 0
	for item := range a {
		if _, ok := b[item]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
