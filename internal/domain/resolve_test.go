package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CatalogTakesPrecedence(t *testing.T) {
	catalog := &MechanismSolution{
		T:   PrincipalAxis{Azimuth: 12.5, Plunge: 3.1},
		N:   PrincipalAxis{Azimuth: 200, Plunge: 80},
		P:   PrincipalAxis{Azimuth: 102, Plunge: 9},
		NP1: NodalPlane{Strike: 57, Dip: 84, Rake: -176},
		NP2: NodalPlane{Strike: 326, Dip: 86, Rake: -6},
	}

	// The focal plane is ignored, even when it would fail to resolve.
	res, err := Resolve(MechanismSource{
		Focal:   FocalMechanism{Strike: 0, Dip: 45, Rake: 90, Magnitude: 300},
		Catalog: catalog,
	})
	require.NoError(t, err)

	assert.False(t, res.CompositeForced)
	if diff := cmp.Diff(*catalog, res.Solution); diff != "" {
		t.Errorf("solution mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_SyntheticDoubleCouple(t *testing.T) {
	focal := FocalMechanism{Strike: 123, Dip: 37, Rake: -71, Magnitude: 6.4}

	res, err := Resolve(MechanismSource{Focal: focal})
	require.NoError(t, err)
	assert.True(t, res.CompositeForced)

	mt, err := BuildTensor(focal.Strike, focal.Dip, focal.Rake, focal.Magnitude)
	require.NoError(t, err)
	want, err := Decompose(mt)
	require.NoError(t, err)

	if diff := cmp.Diff(want, res.Solution); diff != "" {
		t.Errorf("solution mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		focal FocalMechanism
		stage string
		want  error
	}{
		{
			name:  "NaN dip",
			focal: FocalMechanism{Strike: 10, Dip: math.NaN(), Rake: 0, Magnitude: 5},
			stage: "build",
			want:  ErrInvalidInput,
		},
		{
			name:  "moment overflows",
			focal: FocalMechanism{Strike: 10, Dip: 45, Rake: 0, Magnitude: 250},
			stage: "build",
			want:  ErrArithmeticOverflow,
		},
		{
			name:  "subnormal moment",
			focal: FocalMechanism{Strike: 30, Dip: 45, Rake: 60, Magnitude: -225.4},
			stage: "decompose",
			want:  ErrDegenerateTensor,
		},
		{
			name:  "moment underflows to zero",
			focal: FocalMechanism{Strike: 10, Dip: 45, Rake: 0, Magnitude: -300},
			stage: "decompose",
			want:  ErrDegenerateTensor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(MechanismSource{Focal: tt.focal})
			require.ErrorIs(t, err, tt.want)

			var mechErr *MechanismError
			require.True(t, errors.As(err, &mechErr))
			assert.Equal(t, tt.stage, mechErr.Stage)
		})
	}
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_input", ErrorKind(&MechanismError{Stage: "build", Err: ErrInvalidInput}))
	assert.Equal(t, "overflow", ErrorKind(ErrArithmeticOverflow))
	assert.Equal(t, "degenerate", ErrorKind(&MechanismError{Stage: "decompose", Err: ErrDegenerateTensor}))
	assert.Equal(t, "instability", ErrorKind(ErrNumericalInstability))
	assert.Equal(t, "other", ErrorKind(errors.New("boom")))
}
