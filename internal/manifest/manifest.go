// Package manifest loads the YAML description of a module's differentiable
// functions. A manifest lists the functions the front end declared, their
// differentiability annotations, witnesses it registered eagerly, and the
// lookup requests to replay. It is the fixture format for the adlookup tool
// and for tests.
package manifest

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tangentlang/tangent/internal/autodiff"
	"github.com/tangentlang/tangent/internal/indexset"
)

// Module is the top-level manifest document.
type Module struct {
	// Name of the module being compiled.
	Name string `yaml:"module"`

	// Functions declared in the module, in source order.
	Functions []Function `yaml:"functions"`

	// Witnesses the front end registered eagerly, before any lookup runs.
	Witnesses []Witness `yaml:"witnesses,omitempty"`

	// Requests to replay against the registry, in order.
	Requests []Request `yaml:"requests,omitempty"`
}

// Function describes one declared function.
type Function struct {
	Name string `yaml:"name"`

	// Arity is the declared parameter count; annotation indices range over
	// [0, arity).
	Arity int `yaml:"arity"`

	// External marks a function with no body in this module (an external
	// reference).
	External bool `yaml:"external,omitempty"`

	// Synthesized marks a compiler-generated function with no source
	// declaration at all. Synthesized functions carry no annotations.
	Synthesized bool `yaml:"synthesized,omitempty"`

	// Annotations in source order. Order matters: it is the resolver's
	// tie-break key.
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// Annotation is one @differentiable attribute.
type Annotation struct {
	// Parameters lists the positions differentiated with respect to.
	Parameters []int `yaml:"parameters"`

	// Signature names the derivative generic signature. Annotations with the
	// same name share one signature handle.
	Signature string `yaml:"signature,omitempty"`
}

// Witness is an eagerly registered derivative record.
type Witness struct {
	Function   string `yaml:"function"`
	Parameters []int  `yaml:"parameters"`

	// Results lists the differentiated result positions; defaults to [0].
	Results []int `yaml:"results,omitempty"`

	// ResultArity is the capacity of the result index set; defaults to 1.
	ResultArity int `yaml:"result_arity,omitempty"`

	Signature string `yaml:"signature,omitempty"`

	// Defined marks a witness whose derivative body is already compiled.
	Defined bool `yaml:"defined,omitempty"`
}

// Request replays one lookup against the registry.
type Request struct {
	Function   string `yaml:"function"`
	Parameters []int  `yaml:"parameters"`

	// ParameterArity is the capacity the request was computed against, which
	// may be smaller than the function's declared arity when the caller sees
	// a partially applied view. Defaults to the function's arity.
	ParameterArity int `yaml:"parameter_arity,omitempty"`

	// Results and ResultArity follow the same defaults as Witness.
	Results     []int `yaml:"results,omitempty"`
	ResultArity int   `yaml:"result_arity,omitempty"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest content from bytes. The path argument is used only
// for error messages.
func Parse(data []byte, path string) (*Module, error) {
	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate checks the manifest for semantic errors.
func (m *Module) validate(path string) error {
	if len(m.Functions) == 0 {
		return fmt.Errorf("%s: no functions defined", path)
	}

	byName := make(map[string]*Function, len(m.Functions))
	for i := range m.Functions {
		fn := &m.Functions[i]
		if fn.Name == "" {
			return fmt.Errorf("%s: functions[%d]: name is required", path, i)
		}
		if _, dup := byName[fn.Name]; dup {
			return fmt.Errorf("%s: functions[%d]: duplicate function %q", path, i, fn.Name)
		}
		if fn.Arity < 0 {
			return fmt.Errorf("%s: functions[%d] (%s): negative arity %d", path, i, fn.Name, fn.Arity)
		}
		if fn.Synthesized && len(fn.Annotations) > 0 {
			return fmt.Errorf("%s: functions[%d] (%s): synthesized functions cannot carry annotations", path, i, fn.Name)
		}
		for j, a := range fn.Annotations {
			for _, p := range a.Parameters {
				if p < 0 || p >= fn.Arity {
					return fmt.Errorf("%s: functions[%d] (%s): annotations[%d]: parameter %d out of range for arity %d",
						path, i, fn.Name, j, p, fn.Arity)
				}
			}
		}
		byName[fn.Name] = fn
	}

	seenWitnesses := make(map[string]int)
	for i, w := range m.Witnesses {
		fn, ok := byName[w.Function]
		if !ok {
			return fmt.Errorf("%s: witnesses[%d]: unknown function %q", path, i, w.Function)
		}
		for _, p := range w.Parameters {
			if p < 0 || p >= fn.Arity {
				return fmt.Errorf("%s: witnesses[%d] (%s): parameter %d out of range for arity %d",
					path, i, w.Function, p, fn.Arity)
			}
		}
		// The registry holds at most one witness per (function, parameters,
		// results); a second entry for the same triple must be rejected here,
		// before registration. The signature is not part of the key.
		key := witnessKey(w)
		if prev, dup := seenWitnesses[key]; dup {
			return fmt.Errorf("%s: witnesses[%d] (%s): duplicate witness configuration, already declared at witnesses[%d]",
				path, i, w.Function, prev)
		}
		seenWitnesses[key] = i
	}

	for i, req := range m.Requests {
		fn, ok := byName[req.Function]
		if !ok {
			return fmt.Errorf("%s: requests[%d]: unknown function %q", path, i, req.Function)
		}
		arity := req.ParameterArity
		if arity == 0 {
			arity = fn.Arity
		}
		for _, p := range req.Parameters {
			if p < 0 || p >= arity {
				return fmt.Errorf("%s: requests[%d] (%s): parameter %d out of range for capacity %d",
					path, i, req.Function, p, arity)
			}
		}
	}

	return nil
}

// witnessKey canonicalizes the (function, parameters, results) triple that
// identifies a witness in the registry, with the manifest's result defaults
// applied. Index lists are set-valued, so order and repeats do not matter.
func witnessKey(w Witness) string {
	resultArity := w.ResultArity
	if resultArity == 0 {
		resultArity = 1
	}
	results := w.Results
	if results == nil {
		results = []int{0}
	}
	return fmt.Sprintf("%s|%v|%d|%v",
		w.Function, normalizeIndices(w.Parameters), resultArity, normalizeIndices(results))
}

// normalizeIndices returns a sorted copy with repeats removed.
func normalizeIndices(indices []int) []int {
	out := append([]int(nil), indices...)
	sort.Ints(out)
	n := 0
	for _, v := range out {
		if n == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// resultSet builds a result index set from the manifest defaults: capacity 1,
// member 0, unless overridden.
func resultSet(results []int, resultArity int) (*indexset.IndexSet, error) {
	if resultArity == 0 {
		resultArity = 1
	}
	if results == nil {
		results = []int{0}
	}
	return indexset.New(resultArity, results...)
}

// Build materializes the manifest: function declarations with their
// annotations, eagerly registered witnesses, and a fresh module registry.
// Returned functions are keyed by name.
func (m *Module) Build() (*autodiff.Registry, map[string]autodiff.Function, error) {
	registry := autodiff.NewRegistry()
	funcs := make(map[string]autodiff.Function, len(m.Functions))

	for _, fn := range m.Functions {
		if fn.Synthesized {
			funcs[fn.Name] = autodiff.NewSynthesizedFunction(fn.Name)
			continue
		}
		decl := autodiff.NewFuncDecl(fn.Name, fn.Arity)
		for _, a := range fn.Annotations {
			params, err := indexset.New(fn.Arity, a.Parameters...)
			if err != nil {
				return nil, nil, fmt.Errorf("annotation on %s: %w", fn.Name, err)
			}
			if err := decl.AddAnnotation(params, autodiff.NamedSignature(a.Signature)); err != nil {
				return nil, nil, err
			}
		}
		funcs[fn.Name] = autodiff.NewDeclaredFunction(decl, fn.External)
	}

	for _, w := range m.Witnesses {
		fn := funcs[w.Function]
		arity := m.arityOf(w.Function)
		params, err := indexset.New(arity, w.Parameters...)
		if err != nil {
			return nil, nil, fmt.Errorf("witness for %s: %w", w.Function, err)
		}
		results, err := resultSet(w.Results, w.ResultArity)
		if err != nil {
			return nil, nil, fmt.Errorf("witness for %s: %w", w.Function, err)
		}
		state := autodiff.WitnessDeclaration
		linkage := autodiff.LinkagePublicExternal
		if w.Defined {
			state = autodiff.WitnessDefinition
			linkage = autodiff.LinkagePublic
		}
		registry.RegisterWitness(&autodiff.Witness{
			Function: fn,
			Config: autodiff.Config{
				ParameterIndices:    params,
				ResultIndices:       results,
				DerivativeSignature: autodiff.NamedSignature(w.Signature),
			},
			State:   state,
			Linkage: linkage,
		})
	}

	return registry, funcs, nil
}

// RequestSets builds the parameter and result index sets for one request.
func (m *Module) RequestSets(req Request) (params, results *indexset.IndexSet, err error) {
	arity := req.ParameterArity
	if arity == 0 {
		arity = m.arityOf(req.Function)
	}
	params, err = indexset.New(arity, req.Parameters...)
	if err != nil {
		return nil, nil, fmt.Errorf("request for %s: %w", req.Function, err)
	}
	results, err = resultSet(req.Results, req.ResultArity)
	if err != nil {
		return nil, nil, fmt.Errorf("request for %s: %w", req.Function, err)
	}
	return params, results, nil
}

func (m *Module) arityOf(name string) int {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return m.Functions[i].Arity
		}
	}
	return 0
}
