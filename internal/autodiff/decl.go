package autodiff

import (
	"fmt"

	"github.com/tangentlang/tangent/internal/indexset"
)

// Function identifies a differentiable function. The identity key is Name(),
// which must be unique within the module being compiled; the rest of the
// function (body, type) is owned by other compiler stages and never inspected
// here.
type Function interface {
	Name() string

	// Decl returns the source declaration carrying the function's
	// differentiability annotations, or nil for purely synthesized functions
	// (thunks, specializations) that have no source-level declaration.
	Decl() *FuncDecl

	// IsExternalDeclaration reports whether the function has no body in the
	// current module.
	IsExternalDeclaration() bool
}

// Annotation is one declared differentiability attribute on a function: the
// parameter positions it differentiates with respect to, and the generic
// signature its derivative was declared under. Annotations are immutable
// after creation.
type Annotation struct {
	ParameterIndices    *indexset.IndexSet
	DerivativeSignature GenericSignature
}

// FuncDecl is the declaration-side view of a function: its name, declared
// arity, and differentiability annotations in source order. A function may
// carry several annotations at different granularities; their order is the
// tie-break key during minimal-cover resolution and must stay source order
// for reproducible builds.
type FuncDecl struct {
	name        string
	arity       int
	annotations []*Annotation
}

func NewFuncDecl(name string, arity int) *FuncDecl {
	return &FuncDecl{name: name, arity: arity}
}

func (d *FuncDecl) Name() string {
	return d.name
}

// Arity is the declared parameter count; every annotation's index set ranges
// over exactly this capacity.
func (d *FuncDecl) Arity() int {
	return d.arity
}

// AddAnnotation appends a differentiability annotation. Annotation index sets
// are declared against the function's full arity.
func (d *FuncDecl) AddAnnotation(params *indexset.IndexSet, sig GenericSignature) error {
	if params.Capacity() != d.arity {
		return fmt.Errorf("annotation on %s: index capacity %d does not match declared arity %d",
			d.name, params.Capacity(), d.arity)
	}
	d.annotations = append(d.annotations, &Annotation{
		ParameterIndices:    params,
		DerivativeSignature: sig,
	})
	return nil
}

// Annotations returns the declared annotations in source order.
func (d *FuncDecl) Annotations() []*Annotation {
	return d.annotations
}

// DeclaredFunction is the standard Function for functions that originate
// from a source declaration.
type DeclaredFunction struct {
	decl     *FuncDecl
	external bool
}

// NewDeclaredFunction wraps decl as a Function. external marks a function
// with no body in the current module (an external reference).
func NewDeclaredFunction(decl *FuncDecl, external bool) *DeclaredFunction {
	return &DeclaredFunction{decl: decl, external: external}
}

func (f *DeclaredFunction) Name() string                { return f.decl.name }
func (f *DeclaredFunction) Decl() *FuncDecl             { return f.decl }
func (f *DeclaredFunction) IsExternalDeclaration() bool { return f.external }

// SynthesizedFunction is a function with no source declaration. It can never
// resolve a witness through annotations.
type SynthesizedFunction struct {
	name string
}

func NewSynthesizedFunction(name string) *SynthesizedFunction {
	return &SynthesizedFunction{name: name}
}

func (f *SynthesizedFunction) Name() string                { return f.name }
func (f *SynthesizedFunction) Decl() *FuncDecl             { return nil }
func (f *SynthesizedFunction) IsExternalDeclaration() bool { return false }
