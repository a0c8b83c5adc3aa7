package quantum

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/google/uuid"
)

// OpKind distinguishes unitary gates from measurements.
type OpKind int

const (
	// OpGate is a unitary operation over one or more qubits.
	OpGate OpKind = iota
	// OpMeasure reads one qubit into one classical bit.
	OpMeasure
)

// Operation is one step of a circuit. For gates, Targets orders the local
// bits of Matrix: Targets[0] is the least significant bit of the local
// index, so a k-qubit gate has a 2^k × 2^k row-major Matrix.
type Operation struct {
	Kind    OpKind
	Name    string
	Targets []QubitRef
	Matrix  []complex128

	// Measurement fields
	Qubit QubitRef
	Clbit ClbitRef
}

// Inverse returns the adjoint of a gate operation.
func (op Operation) Inverse() (Operation, error) {
	if op.Kind != OpGate {
		return Operation{}, fmt.Errorf("operation %q has no inverse", op.Name)
	}

	dim := 1 << len(op.Targets)
	inv := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			inv[j*dim+i] = cmplx.Conj(op.Matrix[i*dim+j])
		}
	}

	name := op.Name
	if strings.HasSuffix(name, "_dg") {
		name = strings.TrimSuffix(name, "_dg")
	} else {
		name += "_dg"
	}

	return Operation{
		Kind:    OpGate,
		Name:    name,
		Targets: append([]QubitRef(nil), op.Targets...),
		Matrix:  inv,
	}, nil
}

// Circuit is an ordered sequence of operations over registers. Register
// addition order fixes global qubit indices: the first register added holds
// the lowest (least significant) qubits.
type Circuit struct {
	Name string

	qregs    []*Register
	cregs    []*ClassicalRegister
	qoffsets map[*Register]int
	coffsets map[*ClassicalRegister]int
	ops      []Operation
}

// NewCircuit creates a circuit over the given registers, in order. An empty
// name gets a generated one.
func NewCircuit(name string, regs ...*Register) *Circuit {
	if name == "" {
		name = "circuit-" + uuid.NewString()[:8]
	}
	c := &Circuit{
		Name:     name,
		qoffsets: make(map[*Register]int),
		coffsets: make(map[*ClassicalRegister]int),
	}
	for _, r := range regs {
		c.AddRegister(r)
	}
	return c
}

// AddRegister appends a quantum register. Adding a register twice is a no-op.
func (c *Circuit) AddRegister(r *Register) {
	if _, ok := c.qoffsets[r]; ok {
		return
	}
	c.qoffsets[r] = c.NumQubits()
	c.qregs = append(c.qregs, r)
}

// AddClassicalRegister appends a classical register. Idempotent.
func (c *Circuit) AddClassicalRegister(r *ClassicalRegister) {
	if _, ok := c.coffsets[r]; ok {
		return
	}
	c.coffsets[r] = c.NumClbits()
	c.cregs = append(c.cregs, r)
}

// HasRegister reports whether the quantum register is part of the circuit.
func (c *Circuit) HasRegister(r *Register) bool {
	_, ok := c.qoffsets[r]
	return ok
}

// Registers returns the quantum registers in index order.
func (c *Circuit) Registers() []*Register {
	return append([]*Register(nil), c.qregs...)
}

// ClassicalRegisters returns the classical registers in index order.
func (c *Circuit) ClassicalRegisters() []*ClassicalRegister {
	return append([]*ClassicalRegister(nil), c.cregs...)
}

// NumQubits returns the total qubit count.
func (c *Circuit) NumQubits() int {
	n := 0
	for _, r := range c.qregs {
		n += r.Size
	}
	return n
}

// NumClbits returns the total classical bit count.
func (c *Circuit) NumClbits() int {
	n := 0
	for _, r := range c.cregs {
		n += r.Size
	}
	return n
}

// Width returns qubits plus classical bits, the total wire count.
func (c *Circuit) Width() int {
	return c.NumQubits() + c.NumClbits()
}

// QubitIndex resolves a qubit reference to its global index.
func (c *Circuit) QubitIndex(ref QubitRef) (int, error) {
	off, ok := c.qoffsets[ref.Reg]
	if !ok {
		return 0, fmt.Errorf("register %q not in circuit %s", ref.Reg.Name, c.Name)
	}
	if ref.Bit < 0 || ref.Bit >= ref.Reg.Size {
		return 0, fmt.Errorf("qubit %s out of range", ref)
	}
	return off + ref.Bit, nil
}

// ClbitIndex resolves a classical bit reference to its global index.
func (c *Circuit) ClbitIndex(ref ClbitRef) (int, error) {
	off, ok := c.coffsets[ref.Reg]
	if !ok {
		return 0, fmt.Errorf("classical register %q not in circuit %s", ref.Reg.Name, c.Name)
	}
	if ref.Bit < 0 || ref.Bit >= ref.Reg.Size {
		return 0, fmt.Errorf("classical bit %s out of range", ref)
	}
	return off + ref.Bit, nil
}

// Append adds an operation after validating its references and matrix shape.
func (c *Circuit) Append(op Operation) error {
	switch op.Kind {
	case OpGate:
		if len(op.Targets) == 0 {
			return fmt.Errorf("gate %q has no targets", op.Name)
		}
		dim := 1 << len(op.Targets)
		if len(op.Matrix) != dim*dim {
			return fmt.Errorf("gate %q matrix has %d entries, want %d", op.Name, len(op.Matrix), dim*dim)
		}
		seen := make(map[int]bool, len(op.Targets))
		for _, t := range op.Targets {
			idx, err := c.QubitIndex(t)
			if err != nil {
				return fmt.Errorf("gate %q: %w", op.Name, err)
			}
			if seen[idx] {
				return fmt.Errorf("gate %q targets qubit %s twice", op.Name, t)
			}
			seen[idx] = true
		}
	case OpMeasure:
		if _, err := c.QubitIndex(op.Qubit); err != nil {
			return fmt.Errorf("measure: %w", err)
		}
		if _, err := c.ClbitIndex(op.Clbit); err != nil {
			return fmt.Errorf("measure: %w", err)
		}
	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}

	c.ops = append(c.ops, op)
	return nil
}

// Gate appends a unitary over the target qubits. Targets order the local
// bits, least significant first.
func (c *Circuit) Gate(name string, matrix []complex128, targets ...QubitRef) error {
	return c.Append(Operation{Kind: OpGate, Name: name, Targets: targets, Matrix: matrix})
}

// Measure appends a measurement of q into cl.
func (c *Circuit) Measure(q QubitRef, cl ClbitRef) error {
	return c.Append(Operation{Kind: OpMeasure, Name: "measure", Qubit: q, Clbit: cl})
}

// H appends a Hadamard gate.
func (c *Circuit) H(q QubitRef) error { return c.Gate("h", HMatrix(), q) }

// X appends a Pauli-X gate.
func (c *Circuit) X(q QubitRef) error { return c.Gate("x", XMatrix(), q) }

// SDag appends the adjoint phase gate S†.
func (c *Circuit) SDag(q QubitRef) error { return c.Gate("sdg", SDagMatrix(), q) }

// RY appends a Y-axis rotation by theta.
func (c *Circuit) RY(theta float64, q QubitRef) error {
	return c.Gate("ry", RYMatrix(theta), q)
}

// Compose appends all operations of sub to the circuit, adding any registers
// sub introduces. Register order within sub is preserved.
func (c *Circuit) Compose(sub *Circuit) error {
	for _, r := range sub.qregs {
		c.AddRegister(r)
	}
	for _, r := range sub.cregs {
		c.AddClassicalRegister(r)
	}
	for _, op := range sub.ops {
		if err := c.Append(op); err != nil {
			return fmt.Errorf("compose %s into %s: %w", sub.Name, c.Name, err)
		}
	}
	return nil
}

// Inverse returns the adjoint circuit: operations reversed, each gate
// conjugate-transposed. Circuits containing measurements have no inverse.
func (c *Circuit) Inverse() (*Circuit, error) {
	inv := NewCircuit(c.Name+"_dg", c.qregs...)
	for _, r := range c.cregs {
		inv.AddClassicalRegister(r)
	}
	for i := len(c.ops) - 1; i >= 0; i-- {
		iop, err := c.ops[i].Inverse()
		if err != nil {
			return nil, fmt.Errorf("inverse of %s: %w", c.Name, err)
		}
		if err := inv.Append(iop); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// Operations returns a copy of the operation sequence.
func (c *Circuit) Operations() []Operation {
	return append([]Operation(nil), c.ops...)
}

// OperationCount returns the total number of operations, measurements
// included.
func (c *Circuit) OperationCount() int {
	return len(c.ops)
}

// Depth returns the longest wire-sequential path through the circuit.
func (c *Circuit) Depth() int {
	qubitLevel := make([]int, c.NumQubits())
	clbitLevel := make([]int, c.NumClbits())

	depth := 0
	for _, op := range c.ops {
		level := 0
		var wires []int
		var clwires []int

		switch op.Kind {
		case OpGate:
			for _, t := range op.Targets {
				idx, _ := c.QubitIndex(t)
				wires = append(wires, idx)
				if qubitLevel[idx] > level {
					level = qubitLevel[idx]
				}
			}
		case OpMeasure:
			qi, _ := c.QubitIndex(op.Qubit)
			ci, _ := c.ClbitIndex(op.Clbit)
			wires = append(wires, qi)
			clwires = append(clwires, ci)
			if qubitLevel[qi] > level {
				level = qubitLevel[qi]
			}
			if clbitLevel[ci] > level {
				level = clbitLevel[ci]
			}
		}

		level++
		for _, w := range wires {
			qubitLevel[w] = level
		}
		for _, w := range clwires {
			clbitLevel[w] = level
		}
		if level > depth {
			depth = level
		}
	}
	return depth
}
