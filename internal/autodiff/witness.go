package autodiff

import (
	"fmt"

	"github.com/tangentlang/tangent/internal/indexset"
)

// Config is the canonical key identifying one witness: exactly which
// parameter and result positions are differentiated, under which derivative
// generic signature. Two configs identify the same witness iff all three
// parts compare equal.
type Config struct {
	ParameterIndices    *indexset.IndexSet
	ResultIndices       *indexset.IndexSet
	DerivativeSignature GenericSignature
}

func (c Config) Equal(other Config) bool {
	return c.ParameterIndices.Equal(other.ParameterIndices) &&
		c.ResultIndices.Equal(other.ResultIndices) &&
		c.DerivativeSignature == other.DerivativeSignature
}

func (c Config) String() string {
	sig := "<none>"
	if c.DerivativeSignature != nil {
		sig = c.DerivativeSignature.String()
	}
	return fmt.Sprintf("(parameters: %s results: %s where: %s)",
		c.ParameterIndices, c.ResultIndices, sig)
}

// WitnessState distinguishes a witness that merely references a derivative
// (an external declaration with no body yet) from one whose derivative body
// has been compiled.
type WitnessState int

const (
	WitnessDeclaration WitnessState = iota
	WitnessDefinition
)

func (s WitnessState) String() string {
	switch s {
	case WitnessDeclaration:
		return "declaration"
	case WitnessDefinition:
		return "definition"
	default:
		return fmt.Sprintf("WitnessState(%d)", int(s))
	}
}

// Linkage is the witness symbol's visibility.
type Linkage int

const (
	LinkagePublic Linkage = iota
	LinkagePublicExternal
)

func (l Linkage) String() string {
	switch l {
	case LinkagePublic:
		return "public"
	case LinkagePublicExternal:
		return "public_external"
	default:
		return fmt.Sprintf("Linkage(%d)", int(l))
	}
}

// Witness binds a function and one exact autodiff configuration to a
// derivative record. Witnesses are owned by the Registry for the lifetime of
// the module being compiled and are never mutated in this package; the
// declaration-to-definition transition happens in later pipeline stages.
type Witness struct {
	// ID is a unique record identifier assigned at registration, for
	// reporting and diagnostics only; the lookup key is (function, config).
	ID string

	Function Function
	Config   Config
	State    WitnessState
	Linkage  Linkage
}

func (w *Witness) String() string {
	return fmt.Sprintf("witness %s for %s %s [%s, %s]",
		w.ID, w.Function.Name(), w.Config, w.State, w.Linkage)
}
