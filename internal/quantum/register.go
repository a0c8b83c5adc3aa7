// Package quantum provides the circuit model and simulator backends used by
// the solver pipeline. Amplitude indices are little-endian: global qubit g
// corresponds to bit g of the statevector index, and qubit 0 is the least
// significant bit.
package quantum

import "fmt"

// Register is a named group of qubits. Registers are identity objects:
// circuits track them by pointer, and a bit reference is only meaningful
// together with the register it belongs to.
type Register struct {
	Name string
	Size int
}

// NewRegister creates a quantum register with the given number of qubits.
func NewRegister(size int, name string) *Register {
	return &Register{Name: name, Size: size}
}

// Bit returns a reference to qubit i of the register.
func (r *Register) Bit(i int) QubitRef {
	return QubitRef{Reg: r, Bit: i}
}

// ClassicalRegister is a named group of classical bits.
type ClassicalRegister struct {
	Name string
	Size int
}

// NewClassicalRegister creates a classical register with the given number of bits.
func NewClassicalRegister(size int, name string) *ClassicalRegister {
	return &ClassicalRegister{Name: name, Size: size}
}

// Bit returns a reference to classical bit i of the register.
func (r *ClassicalRegister) Bit(i int) ClbitRef {
	return ClbitRef{Reg: r, Bit: i}
}

// QubitRef identifies one qubit inside a register.
type QubitRef struct {
	Reg *Register
	Bit int
}

func (q QubitRef) String() string {
	if q.Reg == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%d]", q.Reg.Name, q.Bit)
}

// ClbitRef identifies one classical bit inside a classical register.
type ClbitRef struct {
	Reg *ClassicalRegister
	Bit int
}

func (c ClbitRef) String() string {
	if c.Reg == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%d]", c.Reg.Name, c.Bit)
}
