package defaults

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cameronsjo/stevedore/internal/props"
)

// StructureError reports generated property files whose key sets diverge
// in structured mode. Keys holds every offending key, sorted.
type StructureError struct {
	Keys []string
}

func (e *StructureError) Error() string {
	return "generated property files define divergent key sets:\n" + strings.Join(e.Keys, "\n")
}

// checkStructure parses each written file as a property set and requires
// an identical key set across the batch. The offending keys are exactly
// those appearing in some pairwise symmetric difference, which is every
// key not present in all files.
func checkStructure(paths []string) error {
	if len(paths) < 2 {
		return nil
	}

	counts := make(map[string]int)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read generated file: %w", err)
		}
		for key := range props.Parse(data) {
			counts[key]++
		}
	}

	var offending []string
	for key, n := range counts {
		if n != len(paths) {
			offending = append(offending, key)
		}
	}
	if len(offending) == 0 {
		return nil
	}

	sort.Strings(offending)
	return &StructureError{Keys: offending}
}
