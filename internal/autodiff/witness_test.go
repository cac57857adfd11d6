package autodiff

import (
	"testing"

	"github.com/tangentlang/tangent/internal/indexset"
)

func TestConfigEqual(t *testing.T) {
	base := Config{
		ParameterIndices:    indexset.MustNew(2, 0),
		ResultIndices:       indexset.MustNew(1, 0),
		DerivativeSignature: NamedSignature("sig"),
	}

	tests := []struct {
		name  string
		other Config
		want  bool
	}{
		{
			"identical",
			Config{
				ParameterIndices:    indexset.MustNew(2, 0),
				ResultIndices:       indexset.MustNew(1, 0),
				DerivativeSignature: NamedSignature("sig"),
			},
			true,
		},
		{
			"different parameters",
			Config{
				ParameterIndices:    indexset.MustNew(2, 1),
				ResultIndices:       indexset.MustNew(1, 0),
				DerivativeSignature: NamedSignature("sig"),
			},
			false,
		},
		{
			"different results",
			Config{
				ParameterIndices:    indexset.MustNew(2, 0),
				ResultIndices:       indexset.MustNew(2, 0),
				DerivativeSignature: NamedSignature("sig"),
			},
			false,
		},
		{
			// Same index sets under another signature is a different witness
			// identity, even though the registry's exact-lookup key would
			// collide with it.
			"different signature only",
			Config{
				ParameterIndices:    indexset.MustNew(2, 0),
				ResultIndices:       indexset.MustNew(1, 0),
				DerivativeSignature: NamedSignature("other"),
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", base, tt.other, got, tt.want)
			}
		})
	}
}
