package testevents

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/reactive"
	"github.com/okian/edupanel/internal/domain/views"
)

// ErrInconsistent marks an answer that contradicts the dependency graph or
// the parameter state.
var ErrInconsistent = errors.New("inconsistent")

// VerifyUpdate checks that the service recomputed exactly the outputs that
// depend on the parameters it reports as changed, in declaration order.
func VerifyUpdate(graph *reactive.Graph, up reactive.Update) error {
	want := graph.Stale(up.Changed)
	if !slices.Equal(want, up.Recomputed) {
		return fmt.Errorf("%w: changed %v recomputed %v, want %v", ErrInconsistent, up.Changed, up.Recomputed, want)
	}
	return nil
}

// VerifyArtifacts checks that arts holds one artifact per output of graph,
// each keyed by the current value of the parameters it depends on, and
// that no two artifacts share a version.
func VerifyArtifacts(graph *reactive.Graph, p params.Params, arts []views.Artifact) []error {
	var errs []error
	seen := make(map[views.OutputID]bool, len(arts))
	versions := make(map[uint64]views.OutputID, len(arts))

	for _, a := range arts {
		d, ok := graph.Definition(a.Output)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown output %q", ErrInconsistent, a.Output))
			continue
		}
		if seen[a.Output] {
			errs = append(errs, fmt.Errorf("%w: output %q listed twice", ErrInconsistent, a.Output))
		}
		seen[a.Output] = true

		if want := string(d.ID) + "?" + p.Key(d.DependsOn); a.Key != want {
			errs = append(errs, fmt.Errorf("%w: output %q key %q, want %q", ErrInconsistent, a.Output, a.Key, want))
		}
		if other, dup := versions[a.Version]; dup {
			errs = append(errs, fmt.Errorf("%w: outputs %q and %q share version %d", ErrInconsistent, other, a.Output, a.Version))
		}
		versions[a.Version] = a.Output
	}

	for _, id := range graph.Outputs() {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("%w: output %q missing", ErrInconsistent, id))
		}
	}
	return errs
}
