// Package autodiff implements differentiability witness resolution: the
// module-scoped registry of derivative witnesses, exact lookup, and the
// minimal-cover search that maps a requested differentiation configuration
// onto the smallest declared annotation covering it.
package autodiff

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tangentlang/tangent/internal/indexset"
)

// Registry is the module-scoped witness table: the sole authority on which
// derivative witnesses exist for the module being compiled, guaranteeing at
// most one witness per (function, exact config). Create one with NewRegistry
// at module-processing start and drop it at module teardown; it is never
// package-global state.
//
// Resolution is designed for single-threaded use within one optimization
// pass, but registration and the get-or-create sequence run under the
// registry mutex so concurrent passes over the same module cannot register
// two witnesses for one configuration.
type Registry struct {
	mu     sync.Mutex
	byFunc map[string][]*Witness
	count  int
}

func NewRegistry() *Registry {
	return &Registry{byFunc: make(map[string][]*Witness)}
}

// Len returns the number of registered witnesses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// WitnessesForFunction returns the witnesses registered for the named
// function, in registration order.
func (r *Registry) WitnessesForFunction(name string) []*Witness {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.byFunc[name]
	out := make([]*Witness, len(ws))
	copy(out, ws)
	return out
}

// LookupExact returns the witness whose parameter and result index sets
// equal the arguments exactly, or nil when no such derivative has been
// materialized yet. Absence is an expected outcome, not an error. The
// derivative signature is not part of this lookup's key.
func (r *Registry) LookupExact(fn Function, parameterIndices, resultIndices *indexset.IndexSet) *Witness {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupExactLocked(fn.Name(), parameterIndices, resultIndices)
}

func (r *Registry) lookupExactLocked(name string, parameterIndices, resultIndices *indexset.IndexSet) *Witness {
	for _, w := range r.byFunc[name] {
		if w.Config.ParameterIndices.Equal(parameterIndices) &&
			w.Config.ResultIndices.Equal(resultIndices) {
			return w
		}
	}
	return nil
}

// RegisterWitness records a witness authored by the front end (the eager
// path for function definitions with explicit derivative attributes).
// Registering a second witness for the same exact configuration is a caller
// bug and panics.
func (r *Registry) RegisterWitness(w *Witness) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerLocked(w)
}

func (r *Registry) registerLocked(w *Witness) {
	name := w.Function.Name()
	if existing := r.lookupExactLocked(name, w.Config.ParameterIndices, w.Config.ResultIndices); existing != nil {
		panic(fmt.Sprintf("witness registry: duplicate witness for %s at %s", name, w.Config))
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	r.byFunc[name] = append(r.byFunc[name], w)
	r.count++
}

// GetOrCreateMinimalWitness resolves a witness for differentiating fn at the
// requested parameter and result indices, materializing one if needed. It is
// the primary entry point for callers that need a derivative at a given
// configuration regardless of whether it already exists.
//
// It returns nil, signaling "no derivative available at this configuration",
// when:
//   - the request is not single-result (annotation-resolved witnesses always
//     have exactly result 0; multi-result differentiation is unsupported on
//     this path),
//   - fn has no source declaration to carry annotations, or
//   - no declared annotation covers the requested parameters.
//
// On success the returned witness is built from the covering annotation's
// parameter indices, not the raw request. Repeated calls with the same
// arguments return the same witness; the registry never grows a second
// record for one configuration.
func (r *Registry) GetOrCreateMinimalWitness(fn Function, parameterIndices, resultIndices *indexset.IndexSet) *Witness {
	if resultIndices.Capacity() != 1 || !resultIndices.Contains(0) {
		return nil
	}

	decl := fn.Decl()
	if decl == nil {
		return nil
	}

	minimalAnnotation, minimalParameterIndices := FindMinimalCover(parameterIndices, decl.Annotations())
	if minimalAnnotation == nil {
		return nil
	}

	config := Config{
		ParameterIndices:    minimalParameterIndices,
		ResultIndices:       resultIndices,
		DerivativeSignature: minimalAnnotation.DerivativeSignature,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.lookupExactLocked(fn.Name(), config.ParameterIndices, config.ResultIndices); existing != nil {
		return existing
	}

	// A function with a local definition gets its witnesses eagerly from the
	// front end; reaching this point without one is an upstream contract
	// breach, and registering a late declaration here could conflict with it.
	if !fn.IsExternalDeclaration() {
		panic(fmt.Sprintf("witness registry: %s has a definition but no witness at %s; the eager registration path should have created it",
			fn.Name(), config))
	}

	w := &Witness{
		Function: fn,
		Config:   config,
		State:    WitnessDeclaration,
		Linkage:  LinkagePublicExternal,
	}
	r.registerLocked(w)
	return w
}
