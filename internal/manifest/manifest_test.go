package manifest

import (
	"strings"
	"testing"

	"github.com/tangentlang/tangent/internal/indexset"
)

const demoManifest = `
module: gradient_demo
functions:
  - name: f
    arity: 2
    external: true
    annotations:
      - parameters: [0, 1]
        signature: FFull
      - parameters: [0]
        signature: FWrtX
  - name: g
    arity: 3
    external: true
    annotations:
      - parameters: [0, 2]
        signature: GSparse
  - name: loss
    arity: 1
    annotations:
      - parameters: [0]
        signature: Loss
  - name: thunk
    arity: 1
    synthesized: true
witnesses:
  - function: loss
    parameters: [0]
    signature: Loss
    defined: true
requests:
  - function: f
    parameters: [0]
  - function: g
    parameters: [0]
    parameter_arity: 2
`

func TestParseAndBuild(t *testing.T) {
	mod, err := Parse([]byte(demoManifest), "demo.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if mod.Name != "gradient_demo" {
		t.Errorf("module name = %q, want gradient_demo", mod.Name)
	}

	registry, funcs, err := mod.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if registry.Len() != 1 {
		t.Fatalf("Len() = %d after eager registration, want 1", registry.Len())
	}
	if len(funcs) != 4 {
		t.Fatalf("built %d functions, want 4", len(funcs))
	}
	if funcs["thunk"].Decl() != nil {
		t.Errorf("synthesized function should have no declaration")
	}

	// Replay the manifest requests.
	params, results, err := mod.RequestSets(mod.Requests[0])
	if err != nil {
		t.Fatalf("RequestSets: %v", err)
	}
	w := registry.GetOrCreateMinimalWitness(funcs["f"], params, results)
	if w == nil {
		t.Fatal("request for f{0} should resolve")
	}
	if want := indexset.MustNew(2, 0); !w.Config.ParameterIndices.Equal(want) {
		t.Errorf("f witness parameters = %s, want %s (the one-index annotation)", w.Config.ParameterIndices, want)
	}

	params, results, err = mod.RequestSets(mod.Requests[1])
	if err != nil {
		t.Fatalf("RequestSets: %v", err)
	}
	if params.Capacity() != 2 {
		t.Fatalf("request capacity = %d, want the declared parameter_arity 2", params.Capacity())
	}
	w = registry.GetOrCreateMinimalWitness(funcs["g"], params, results)
	if w == nil {
		t.Fatal("request for g{0} over a partial view should resolve")
	}
	if want := indexset.MustNew(3, 0, 2); !w.Config.ParameterIndices.Equal(want) {
		t.Errorf("g witness parameters = %s, want %s", w.Config.ParameterIndices, want)
	}

	if registry.Len() != 3 {
		t.Errorf("Len() = %d after requests, want 3", registry.Len())
	}
}

func TestEagerWitnessIsDiscovered(t *testing.T) {
	mod, err := Parse([]byte(demoManifest), "demo.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	registry, funcs, err := mod.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// loss has a local definition; its witness came from the eager path and
	// get-or-create must return it as-is.
	params := indexset.MustNew(1, 0)
	results := indexset.MustNew(1, 0)
	w := registry.GetOrCreateMinimalWitness(funcs["loss"], params, results)
	if w == nil {
		t.Fatal("loss request should resolve to the eager witness")
	}
	if w.State.String() != "definition" {
		t.Errorf("witness state = %s, want definition", w.State)
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}
}

func TestDistinctWitnessConfigurationsAreAccepted(t *testing.T) {
	doc := `
module: m
functions:
  - name: f
    arity: 2
witnesses:
  - function: f
    parameters: [0]
    signature: a
  - function: f
    parameters: [0, 1]
    signature: a
`
	mod, err := Parse([]byte(doc), "two.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	registry, _, err := mod.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if registry.Len() != 2 {
		t.Errorf("Len() = %d, want 2 distinct witnesses", registry.Len())
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			"no functions",
			"module: empty\n",
			"no functions",
		},
		{
			"missing function name",
			"module: m\nfunctions:\n  - arity: 1\n",
			"name is required",
		},
		{
			"duplicate function",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\n  - name: f\n    arity: 1\n",
			"duplicate function",
		},
		{
			"annotation index out of range",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\n    annotations:\n      - parameters: [1]\n",
			"out of range",
		},
		{
			"annotations on synthesized function",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\n    synthesized: true\n    annotations:\n      - parameters: [0]\n",
			"synthesized",
		},
		{
			"duplicate witness differing only in signature",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\nwitnesses:\n  - function: f\n    parameters: [0]\n    signature: a\n  - function: f\n    parameters: [0]\n    signature: b\n",
			"duplicate witness",
		},
		{
			"duplicate witness with reordered parameters",
			"module: m\nfunctions:\n  - name: f\n    arity: 2\nwitnesses:\n  - function: f\n    parameters: [0, 1]\n  - function: f\n    parameters: [1, 0]\n",
			"duplicate witness",
		},
		{
			"witness for unknown function",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\nwitnesses:\n  - function: q\n    parameters: [0]\n",
			"unknown function",
		},
		{
			"request for unknown function",
			"module: m\nfunctions:\n  - name: f\n    arity: 1\nrequests:\n  - function: q\n    parameters: [0]\n",
			"unknown function",
		},
		{
			"request index beyond declared view",
			"module: m\nfunctions:\n  - name: f\n    arity: 3\nrequests:\n  - function: f\n    parameters: [2]\n    parameter_arity: 2\n",
			"out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			if err == nil {
				t.Fatalf("Parse should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
