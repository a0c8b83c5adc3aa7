package solver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aristath/qsolve/internal/quantum"
)

// assembly is one constructed pipeline, ready for inspection or execution.
type assembly struct {
	circuit *quantum.Circuit
	io      *quantum.Register
	eig     *quantum.Register
	flag    *quantum.Register
	success *quantum.ClassicalRegister
	comps   *components
}

// assemble wires the pipeline stages in order: state preparation, forward
// eigenvalue estimation, reciprocal rotation, inverse eigenvalue
// estimation. When measure is set, a classical bit reads out the flag qubit
// so sampling backends can post-select on rotation success.
func assemble(comps *components, sys *LinearSystem, measure bool) (*assembly, error) {
	io := quantum.NewRegister(sys.NumQubits, "io")
	qc := quantum.NewCircuit("hhl-"+uuid.NewString()[:8], io)

	prep, err := comps.state.ConstructCircuit(io)
	if err != nil {
		return nil, fmt.Errorf("state preparation: %w", err)
	}
	if err := qc.Compose(prep); err != nil {
		return nil, fmt.Errorf("state preparation: %w", err)
	}

	forward, err := comps.eigs.ConstructCircuit(io)
	if err != nil {
		return nil, fmt.Errorf("eigenvalue estimation: %w", err)
	}
	if err := qc.Compose(forward); err != nil {
		return nil, fmt.Errorf("eigenvalue estimation: %w", err)
	}
	eig := comps.eigs.OutputRegister()
	if eig == nil {
		return nil, fmt.Errorf("eigenvalue estimation: no output register")
	}

	rotation, err := comps.rotator.ConstructCircuit(eig)
	if err != nil {
		return nil, fmt.Errorf("reciprocal rotation: %w", err)
	}
	if err := qc.Compose(rotation); err != nil {
		return nil, fmt.Errorf("reciprocal rotation: %w", err)
	}
	flag := comps.rotator.FlagRegister()
	if flag == nil || flag.Size != 1 {
		return nil, fmt.Errorf("reciprocal rotation: flag register must be a single qubit")
	}

	inverse, err := comps.eigs.ConstructInverse()
	if err != nil {
		return nil, fmt.Errorf("inverse eigenvalue estimation: %w", err)
	}
	if err := qc.Compose(inverse); err != nil {
		return nil, fmt.Errorf("inverse eigenvalue estimation: %w", err)
	}

	// The decoder splits the statevector on the flag qubit, so it must sit
	// on the highest wire.
	flagIdx, err := qc.QubitIndex(flag.Bit(0))
	if err != nil {
		return nil, fmt.Errorf("flag register: %w", err)
	}
	if flagIdx != qc.NumQubits()-1 {
		return nil, fmt.Errorf("flag qubit sits on wire %d of %d, want the highest", flagIdx, qc.NumQubits())
	}

	asm := &assembly{circuit: qc, io: io, eig: eig, flag: flag, comps: comps}
	if measure {
		asm.success = quantum.NewClassicalRegister(1, "success")
		qc.AddClassicalRegister(asm.success)
		if err := qc.Measure(flag.Bit(0), asm.success.Bit(0)); err != nil {
			return nil, fmt.Errorf("flag measurement: %w", err)
		}
	}
	return asm, nil
}

// registerSummaries lists the circuit's registers in wire order, quantum
// before classical.
func (a *assembly) registerSummaries() []RegisterSummary {
	var out []RegisterSummary
	for _, r := range a.circuit.Registers() {
		out = append(out, RegisterSummary{Name: r.Name, Size: r.Size, Kind: RegisterKindQuantum})
	}
	for _, r := range a.circuit.ClassicalRegisters() {
		out = append(out, RegisterSummary{Name: r.Name, Size: r.Size, Kind: RegisterKindClassical})
	}
	return out
}
