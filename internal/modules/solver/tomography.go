package solver

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"sync/atomic"

	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

// leadingWeightTol is the smallest density matrix corner entry the decoder
// accepts before declaring the estimate unusable.
const leadingWeightTol = 1e-12

// Measurement bases per qubit. Basis rotations map each one onto a
// computational measurement: X via H, Y via S-dagger then H, Z directly.
var tomographyBases = []byte{'X', 'Y', 'Z'}

// evaluateTomography reconstructs the solution estimate from shot counts.
// One circuit variant per basis setting, 3^n in total, runs through the
// worker pool; the io register's density matrix then comes out of linear
// inversion over the Pauli basis.
func (s *Service) evaluateTomography(ctx context.Context, requestID string, asm *assembly, sys *LinearSystem, res *Result) error {
	settings := tomographySettings(sys.NumQubits)
	tomo := quantum.NewClassicalRegister(sys.NumQubits, "tomo")

	circuits := make([]*quantum.Circuit, len(settings))
	for i, setting := range settings {
		c, err := tomographyVariant(asm, setting, tomo)
		if err != nil {
			return fmt.Errorf("tomography variant %s: %w: %w", setting, ErrConfiguration, err)
		}
		circuits[i] = c
	}

	s.log.Info().
		Str("request_id", requestID).
		Int("variants", len(circuits)).
		Int("workers", s.workers).
		Msg("Running state tomography")

	allCounts, err := s.runTomography(ctx, requestID, circuits)
	if err != nil {
		return fmt.Errorf("tomography: %w: %w", ErrBackendExecution, err)
	}

	probs, rho, err := analyzeTomography(settings, allCounts, sys.NumQubits)
	if err != nil {
		return fmt.Errorf("tomography: %w: %w", ErrBackendExecution, err)
	}
	res.BasisSettings = settings
	res.SettingProbabilities = probs

	fit, err := fitDensityMatrix(rho)
	if err != nil {
		return fmt.Errorf("tomography fit: %w: %w", ErrBackendExecution, err)
	}
	vec, err := leadingColumn(fit)
	if err != nil {
		return fmt.Errorf("tomography fit: %w: %w", ErrBackendExecution, err)
	}

	return s.finish(res, sys, vec)
}

// tomographySettings enumerates every per-qubit basis assignment. Each
// setting is one basis letter per qubit, qubit 0 first.
func tomographySettings(numQubits int) []string {
	total := 1
	for i := 0; i < numQubits; i++ {
		total *= len(tomographyBases)
	}

	settings := make([]string, 0, total)
	current := make([]byte, numQubits)
	var build func(pos int)
	build = func(pos int) {
		if pos == numQubits {
			settings = append(settings, string(current))
			return
		}
		for _, b := range tomographyBases {
			current[pos] = b
			build(pos + 1)
		}
	}
	build(0)
	return settings
}

// tomographyVariant rebuilds the assembled circuit for one basis setting:
// the same gates, then the basis rotations on the io register, then every
// measurement. Reordering the flag readout after the rotations is sound
// because they act on disjoint wires, and it keeps measurements terminal
// for the sampling simulator.
func tomographyVariant(asm *assembly, setting string, tomo *quantum.ClassicalRegister) (*quantum.Circuit, error) {
	c := quantum.NewCircuit(asm.circuit.Name + "-" + setting)
	for _, r := range asm.circuit.Registers() {
		c.AddRegister(r)
	}
	for _, r := range asm.circuit.ClassicalRegisters() {
		c.AddClassicalRegister(r)
	}
	c.AddClassicalRegister(tomo)

	var measures []quantum.Operation
	for _, op := range asm.circuit.Operations() {
		if op.Kind == quantum.OpMeasure {
			measures = append(measures, op)
			continue
		}
		if err := c.Append(op); err != nil {
			return nil, err
		}
	}

	for i := 0; i < asm.io.Size; i++ {
		switch setting[i] {
		case 'X':
			if err := c.H(asm.io.Bit(i)); err != nil {
				return nil, err
			}
		case 'Y':
			if err := c.SDag(asm.io.Bit(i)); err != nil {
				return nil, err
			}
			if err := c.H(asm.io.Bit(i)); err != nil {
				return nil, err
			}
		case 'Z':
		default:
			return nil, fmt.Errorf("unknown measurement basis %q", setting[i])
		}
	}

	for _, m := range measures {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	for i := 0; i < asm.io.Size; i++ {
		if err := c.Measure(asm.io.Bit(i), tomo.Bit(i)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type tomographyJob struct {
	index   int
	circuit *quantum.Circuit
}

type tomographyOutcome struct {
	index  int
	counts map[string]int
	err    error
}

// runTomography executes every variant through the worker pool and returns
// per-variant counts in setting order.
func (s *Service) runTomography(ctx context.Context, requestID string, circuits []*quantum.Circuit) ([]map[string]int, error) {
	jobs := make(chan tomographyJob, len(circuits))
	outcomes := make(chan tomographyOutcome, len(circuits))

	workers := s.workers
	if len(circuits) < workers {
		workers = len(circuits)
	}

	var done atomic.Int64
	total := len(circuits)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				out, err := s.backend.Execute(ctx, job.circuit)
				if err != nil {
					outcomes <- tomographyOutcome{index: job.index, err: err}
					continue
				}
				counts, err := out.Counts(job.circuit.Name)
				outcomes <- tomographyOutcome{index: job.index, counts: counts, err: err}
				if err == nil {
					s.emitProgress(requestID, "tomography", int(done.Add(1)), total)
				}
			}
		}()
	}

	for i, c := range circuits {
		jobs <- tomographyJob{index: i, circuit: c}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	all := make([]map[string]int, len(circuits))
	var firstErr error
	for out := range outcomes {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		all[out.index] = out.counts
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

// analyzeTomography turns per-setting counts into flag success
// probabilities and the linear inversion density matrix of the io register.
// Only shots whose flag read 1 carry the conditioned state, so the outcome
// distributions post-select on that bit. The flag readout is classical bit
// 0, the io readout fills the bits above it; count keys are most
// significant bit first.
func analyzeTomography(settings []string, allCounts []map[string]int, numQubits int) ([]float64, linalg.Matrix, error) {
	dim := 1 << numQubits
	keyLen := numQubits + 1

	probs := make([]float64, len(settings))
	freqs := make([]map[int]float64, len(settings))
	for idx, counts := range allCounts {
		succeeded, failed := 0, 0
		outcomes := make(map[int]int)
		for key, n := range counts {
			if len(key) != keyLen {
				return nil, linalg.Matrix{}, fmt.Errorf("setting %s: count key %q does not cover %d classical bits",
					settings[idx], key, keyLen)
			}
			if key[len(key)-1] != '1' {
				failed += n
				continue
			}
			succeeded += n
			outcome := 0
			for q := 0; q < numQubits; q++ {
				if key[len(key)-2-q] == '1' {
					outcome |= 1 << q
				}
			}
			outcomes[outcome] += n
		}
		if succeeded+failed == 0 {
			return nil, linalg.Matrix{}, fmt.Errorf("setting %s produced no counts", settings[idx])
		}
		if succeeded == 0 {
			return nil, linalg.Matrix{}, fmt.Errorf("setting %s: no shot flagged success", settings[idx])
		}
		probs[idx] = float64(succeeded) / float64(succeeded+failed)

		dist := make(map[int]float64, len(outcomes))
		for outcome, n := range outcomes {
			dist[outcome] = float64(n) / float64(succeeded)
		}
		freqs[idx] = dist
	}

	// A setting measuring qubit q in basis setting[q] estimates every Pauli
	// string whose non-identity letters match it. Expectations average over
	// all compatible settings; the sign of an outcome flips once per
	// measured 1 on a non-identity position.
	expectations := make(map[string]float64)
	contributions := make(map[string]int)
	for idx, setting := range settings {
		for mask := 0; mask < dim; mask++ {
			pauli := make([]byte, numQubits)
			for q := 0; q < numQubits; q++ {
				if mask&(1<<q) != 0 {
					pauli[q] = setting[q]
				} else {
					pauli[q] = 'I'
				}
			}
			key := string(pauli)

			expectation := 0.0
			for outcome, p := range freqs[idx] {
				sign := 1.0
				for q := 0; q < numQubits; q++ {
					if mask&(1<<q) != 0 && outcome&(1<<q) != 0 {
						sign = -sign
					}
				}
				expectation += sign * p
			}
			expectations[key] += expectation
			contributions[key]++
		}
	}

	rho := linalg.NewMatrix(dim)
	for key, expectation := range expectations {
		mean := expectation / float64(contributions[key])
		rho = rho.Add(pauliMatrix(key).Scale(complex(mean/float64(dim), 0)))
	}
	return probs, rho, nil
}

// pauliMatrix builds the tensor product for a Pauli string, qubit 0 on the
// least significant index.
func pauliMatrix(key string) linalg.Matrix {
	single := func(b byte) linalg.Matrix {
		m := linalg.NewMatrix(2)
		switch b {
		case 'I':
			copy(m.Data(), []complex128{1, 0, 0, 1})
		case 'X':
			copy(m.Data(), quantum.XMatrix())
		case 'Y':
			copy(m.Data(), quantum.YMatrix())
		case 'Z':
			copy(m.Data(), quantum.ZMatrix())
		}
		return m
	}

	out := single(key[len(key)-1])
	for q := len(key) - 2; q >= 0; q-- {
		out = linalg.Kron(out, single(key[q]))
	}
	return out
}

// fitDensityMatrix projects the linear inversion estimate onto the physical
// cone: clip negative eigenvalues, renormalize the trace, rebuild.
func fitDensityMatrix(rho linalg.Matrix) (linalg.Matrix, error) {
	eig, err := linalg.EigenHermitian(rho)
	if err != nil {
		return linalg.Matrix{}, err
	}

	trace := 0.0
	for _, v := range eig.Values {
		if v > 0 {
			trace += v
		}
	}
	if trace == 0 {
		return linalg.Matrix{}, fmt.Errorf("density estimate has no positive weight")
	}

	n := rho.Dim()
	fit := linalg.NewMatrix(n)
	for k, v := range eig.Values {
		if v <= 0 {
			continue
		}
		w := complex(v/trace, 0)
		vec := eig.Vectors[k]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				fit.Set(i, j, fit.At(i, j)+w*vec[i]*cmplx.Conj(vec[j]))
			}
		}
	}
	return fit, nil
}

// leadingColumn extracts the pure state estimate from the fitted density
// matrix: its first column scaled so the corner entry becomes the real
// amplitude weight.
func leadingColumn(rho linalg.Matrix) ([]complex128, error) {
	corner := real(rho.At(0, 0))
	if corner <= leadingWeightTol {
		return nil, fmt.Errorf("density estimate has vanishing weight on the first basis state")
	}

	scale := complex(1/math.Sqrt(corner), 0)
	vec := make([]complex128, rho.Dim())
	for i := range vec {
		vec[i] = scale * rho.At(i, 0)
	}
	return vec, nil
}
