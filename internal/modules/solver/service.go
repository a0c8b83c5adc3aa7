package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/qsolve/internal/algorithms"
	"github.com/aristath/qsolve/internal/events"
	"github.com/aristath/qsolve/internal/linalg"
	"github.com/aristath/qsolve/internal/quantum"
)

// defaultWorkers bounds tomography parallelism when no worker count is
// configured.
const defaultWorkers = 4

// Service runs linear system solves end to end: normalize, resolve
// components, assemble the circuit, execute, decode.
type Service struct {
	registry *algorithms.Registry
	backend  quantum.Backend
	bus      *events.Bus
	workers  int
	log      zerolog.Logger
}

// NewService creates a solver service. The backend may be nil for a service
// that only assembles circuits; the bus may be nil to skip event emission.
func NewService(registry *algorithms.Registry, backend quantum.Backend, bus *events.Bus, workers int, log zerolog.Logger) *Service {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Service{
		registry: registry,
		backend:  backend,
		bus:      bus,
		workers:  workers,
		log:      log.With().Str("module", "solver").Logger(),
	}
}

// Solve runs the full pipeline for one request and reports the outcome.
// Circuit mode stops after assembly and never touches the backend.
func (s *Service) Solve(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	requestID := uuid.NewString()

	mode := req.Mode
	if mode == "" {
		mode = ModeCircuit
	}
	if mode != ModeCircuit && mode != ModeEvaluate {
		err := fmt.Errorf("solve: %w: unknown mode %q", ErrConfiguration, req.Mode)
		s.emitFailed(requestID, "validate", err)
		return nil, err
	}

	sys, err := Normalize(req.Matrix, req.Vector)
	if err != nil {
		s.emitFailed(requestID, "normalize", err)
		return nil, err
	}

	comps, err := s.resolveComponents(sys, &req)
	if err != nil {
		s.emitFailed(requestID, "resolve", err)
		return nil, err
	}

	s.emitStarted(requestID, mode, sys)

	measure := s.backend != nil && !s.backend.SupportsStatevector()
	asm, err := assemble(comps, sys, measure)
	if err != nil {
		err = fmt.Errorf("assemble: %w: %w", ErrConfiguration, err)
		s.emitFailed(requestID, "assemble", err)
		return nil, err
	}

	res, err := s.structuralResult(requestID, mode, asm, sys)
	if err != nil {
		s.emitFailed(requestID, "analyze", err)
		return nil, err
	}

	if mode == ModeCircuit {
		s.log.Info().
			Str("request_id", requestID).
			Str("circuit", res.CircuitName).
			Int("width", res.CircuitWidth).
			Int("depth", res.CircuitDepth).
			Int("operations", res.OperationCount).
			Msg("Circuit assembled")
		s.emitCompleted(requestID, res, time.Since(started))
		return res, nil
	}

	if s.backend == nil {
		err := fmt.Errorf("evaluate: %w: no backend configured", ErrMissingDependency)
		s.emitFailed(requestID, "execute", err)
		return nil, err
	}

	if s.backend.SupportsStatevector() {
		err = s.evaluateStatevector(ctx, asm, sys, res)
	} else {
		err = s.evaluateTomography(ctx, requestID, asm, sys, res)
	}
	if err != nil {
		s.emitFailed(requestID, "decode", err)
		return nil, err
	}

	elapsed := time.Since(started)
	s.log.Info().
		Str("request_id", requestID).
		Str("backend", s.backend.Name()).
		Float64("fidelity", *res.Fidelity).
		Dur("elapsed", elapsed).
		Msg("Solve completed")
	s.emitCompleted(requestID, res, elapsed)
	return res, nil
}

// structuralResult fills the fields every mode reports: the circuit shape
// and the classical reference quantities for the normalized system.
func (s *Service) structuralResult(requestID, mode string, asm *assembly, sys *LinearSystem) (*Result, error) {
	eigenvalues, err := linalg.Eigenvalues(sys.Matrix)
	if err != nil {
		return nil, fmt.Errorf("classical eigenvalues: %w: %w", ErrConfiguration, err)
	}
	classical, err := linalg.Solve(sys.Matrix, sys.Vector)
	if err != nil {
		return nil, fmt.Errorf("classical solve: %w: %w", ErrConfiguration, err)
	}

	return &Result{
		RequestID:            requestID,
		Mode:                 mode,
		Backend:              s.backendName(),
		CircuitName:          asm.circuit.Name,
		Registers:            asm.registerSummaries(),
		CircuitWidth:         asm.circuit.Width(),
		CircuitDepth:         asm.circuit.Depth(),
		OperationCount:       asm.circuit.OperationCount(),
		InputMatrix:          sys.Matrix.Rows(),
		InputVector:          linalg.CloneVec(sys.Vector),
		ClassicalEigenvalues: eigenvalues,
		ClassicalSolution:    classical,
	}, nil
}

// finish attaches the decoded estimate and its classical comparison.
func (s *Service) finish(res *Result, sys *LinearSystem, estimate []complex128) error {
	eval, err := postprocess(sys, estimate)
	if err != nil {
		return fmt.Errorf("postprocess: %w: %w", ErrBackendExecution, err)
	}
	res.EstimatedSolution = eval.estimate
	res.Fidelity = &eval.fidelity
	res.Solution = eval.solution
	return nil
}

// Components reports what the registry can currently resolve.
func (s *Service) Components() ComponentCatalog {
	cat := ComponentCatalog{
		DefaultEigs:         DefaultEigs,
		DefaultReciprocal:   DefaultReciprocal,
		DefaultInitialState: DefaultInitialState,
	}
	if s.registry != nil {
		cat.Eigs = s.registry.EigsNames()
		cat.Reciprocals = s.registry.ReciprocalNames()
		cat.InitialStates = s.registry.InitialStateNames()
	}
	return cat
}

// BackendInfo reports the configured backend's name and whether it yields
// exact amplitudes. A service without a backend reports "none".
func (s *Service) BackendInfo() (string, bool) {
	if s.backend == nil {
		return "none", false
	}
	return s.backend.Name(), s.backend.SupportsStatevector()
}

func (s *Service) backendName() string {
	if s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

func (s *Service) emitStarted(requestID, mode string, sys *LinearSystem) {
	if s.bus == nil {
		return
	}
	s.bus.EmitTyped(events.SolveStarted, "solver", &events.SolveStartedData{
		RequestID: requestID,
		Mode:      mode,
		Dimension: sys.Matrix.Dim(),
		Backend:   s.backendName(),
	})
}

func (s *Service) emitProgress(requestID, stage string, current, total int) {
	if s.bus == nil {
		return
	}
	s.bus.EmitTyped(events.SolveProgress, "solver", &events.SolveProgressData{
		RequestID: requestID,
		Stage:     stage,
		Current:   current,
		Total:     total,
	})
}

func (s *Service) emitCompleted(requestID string, res *Result, elapsed time.Duration) {
	if s.bus == nil {
		return
	}
	s.bus.EmitTyped(events.SolveCompleted, "solver", &events.SolveCompletedData{
		RequestID: requestID,
		Mode:      res.Mode,
		Backend:   res.Backend,
		Duration:  elapsed.Seconds(),
		Fidelity:  res.Fidelity,
	})
}

func (s *Service) emitFailed(requestID, stage string, err error) {
	s.log.Error().
		Str("request_id", requestID).
		Str("stage", stage).
		Err(err).
		Msg("Solve failed")
	if s.bus == nil {
		return
	}
	s.bus.EmitTyped(events.SolveFailed, "solver", &events.SolveFailedData{
		RequestID: requestID,
		Stage:     stage,
		Error:     err.Error(),
	})
}
