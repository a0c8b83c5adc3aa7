package solver

import (
	"context"
	"fmt"

	"github.com/aristath/qsolve/internal/algorithms"
	"github.com/aristath/qsolve/internal/linalg"
)

// evaluateStatevector runs the assembled circuit on an exact backend and
// decodes the solution estimate from the final amplitudes.
func (s *Service) evaluateStatevector(ctx context.Context, asm *assembly, sys *LinearSystem, res *Result) error {
	out, err := s.backend.Execute(ctx, asm.circuit)
	if err != nil {
		return fmt.Errorf("execute %s: %w: %w", asm.circuit.Name, ErrBackendExecution, err)
	}
	sv, err := out.Statevector(asm.circuit.Name)
	if err != nil {
		return fmt.Errorf("decode: %w: %w", ErrBackendExecution, err)
	}

	vec, err := extractSolution(sv, sys.NumQubits, asm.comps.rotator.Layout())
	if err != nil {
		return fmt.Errorf("decode: %w: %w", ErrBackendExecution, err)
	}

	probability := 0.0
	for _, a := range vec {
		probability += real(a)*real(a) + imag(a)*imag(a)
	}
	res.SuccessProbability = &probability

	return s.finish(res, sys, linalg.Normalize(vec))
}

// extractSolution reads the solution amplitudes out of the half of the
// statevector where the rotation flag is set. Block layouts keep them
// contiguous at the bottom of that half. Strided layouts leave rotation
// working bits interleaved above the io bits, so the amplitudes fold
// together with a stride of the system dimension.
func extractSolution(sv []complex128, numQubits int, layout algorithms.ExtractionLayout) ([]complex128, error) {
	if len(sv) == 0 || len(sv)%2 != 0 {
		return nil, fmt.Errorf("statevector length %d is not splittable on a flag qubit", len(sv))
	}
	flagged := sv[len(sv)/2:]
	dim := 1 << numQubits
	if dim > len(flagged) {
		return nil, fmt.Errorf("statevector half holds %d amplitudes, need %d", len(flagged), dim)
	}

	vec := make([]complex128, dim)
	switch layout {
	case algorithms.LayoutBlock:
		copy(vec, flagged[:dim])
	case algorithms.LayoutStrided:
		for i := 0; i < dim; i++ {
			for j := i; j < len(flagged); j += dim {
				vec[i] += flagged[j]
			}
		}
	default:
		return nil, fmt.Errorf("unknown extraction layout %q", layout)
	}
	return vec, nil
}
