package vm

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

func (m *Machine) unknown(name string) error {
	if s := m.Suggest(name); s != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownInstruction, name, s)
	}
	return fmt.Errorf("%w %q", ErrUnknownInstruction, name)
}

// Suggest returns the known instruction closest to name, or "" when
// nothing is close enough.
func (m *Machine) Suggest(name string) string {
	names := m.instructionNames()

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, candidate := range names {
		if d := fuzzy.LevenshteinDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// instructionNames lists the current table in sorted order. It is only
// needed on the unknown-instruction path, so it is not cached.
func (m *Machine) instructionNames() []string {
	names := make([]string, 0, len(m.Instructions))
	for n := range m.Instructions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
