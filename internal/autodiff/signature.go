package autodiff

// GenericSignature is an opaque handle to a derivative generic signature.
// Signatures are produced and interned by the generic-signature collaborator;
// this package compares handles with == and never inspects or reconstructs
// them. Implementations must therefore be comparable types, with interning
// (or structural value types) making == meaningful.
type GenericSignature interface {
	String() string
}

// NamedSignature is the trivial GenericSignature used by tooling and tests:
// two signatures are the same iff they have the same name.
type NamedSignature string

func (s NamedSignature) String() string {
	return string(s)
}
