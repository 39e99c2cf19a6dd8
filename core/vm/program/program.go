// Copyright 2024 The evmint Authors
// This file is part of the evmint library.
//
// The evmint library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmint library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmint library. If not, see <http://www.gnu.org/licenses/>.

// Package program builds bytecode for testing. It is not a compiler: there
// are no guarantees about the produced code, and malformed inputs panic.
package program

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/core/vm"
)

// Program is a byte-code container under construction. Methods chain.
type Program struct {
	code []byte
}

// New creates an empty Program.
func New() *Program {
	return &Program{code: make([]byte, 0)}
}

func (p *Program) add(op byte) *Program {
	p.code = append(p.code, op)
	return p
}

// doPush emits the smallest PUSHX fitting val. A nil val pushes zero.
func (p *Program) doPush(val *uint256.Int) {
	if val == nil {
		val = new(uint256.Int)
	}
	valBytes := val.Bytes()
	if len(valBytes) == 0 {
		valBytes = append(valBytes, 0)
	}
	p.add(byte(vm.PUSH1) - 1 + byte(len(valBytes)))
	p.Append(valBytes)
}

// Append appends raw bytes to the code.
func (p *Program) Append(data []byte) *Program {
	p.code = append(p.code, data...)
	return p
}

// Bytes returns the code. Not a copy.
func (p *Program) Bytes() []byte {
	return p.code
}

// Hex returns the code as a hex string.
func (p *Program) Hex() string {
	return fmt.Sprintf("%02x", p.Bytes())
}

// Op appends the given opcode(s).
func (p *Program) Op(ops ...vm.OpCode) *Program {
	for _, op := range ops {
		p.add(byte(op))
	}
	return p
}

// Push emits a PUSHX of the given value.
func (p *Program) Push(val any) *Program {
	switch v := val.(type) {
	case int:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case uint64:
		p.doPush(new(uint256.Int).SetUint64(v))
	case uint32:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case byte:
		p.doPush(new(uint256.Int).SetUint64(uint64(v)))
	case *uint256.Int:
		p.doPush(v)
	case uint256.Int:
		p.doPush(&v)
	case []byte:
		p.doPush(new(uint256.Int).SetBytes(v))
	case common.Address:
		// Always a full-width PUSH20, so operand layouts stay fixed even for
		// addresses with leading zero bytes.
		p.add(byte(vm.PUSH20))
		p.Append(v.Bytes())
	case interface{ Bytes() []byte }:
		p.doPush(new(uint256.Int).SetBytes(v.Bytes()))
	case nil:
		p.doPush(nil)
	default:
		panic(fmt.Sprintf("unsupported type %T", v))
	}
	return p
}

// Label returns the offset of the next instruction.
func (p *Program) Label() uint64 {
	return uint64(len(p.code))
}

// Jumpdest adds a JUMPDEST and returns its offset.
func (p *Program) Jumpdest() (*Program, uint64) {
	here := p.Label()
	p.Op(vm.JUMPDEST)
	return p, here
}

// Jump pushes the destination and adds a JUMP.
func (p *Program) Jump(loc any) *Program {
	p.Push(loc)
	return p.Op(vm.JUMP)
}

// JumpIf pushes condition and destination and adds a JUMPI.
func (p *Program) JumpIf(loc any, condition any) *Program {
	p.Push(condition)
	p.Push(loc)
	return p.Op(vm.JUMPI)
}

// Size returns the current code size.
func (p *Program) Size() int {
	return len(p.code)
}

// Mstore stores data into memory starting at memStart, in 32 byte chunks
// with an MSTORE8 tail.
func (p *Program) Mstore(data []byte, memStart uint32) *Program {
	var idx = 0
	for ; idx+32 <= len(data); idx += 32 {
		p.Push(data[idx : idx+32])
		p.Push(uint32(idx) + memStart)
		p.Op(vm.MSTORE)
	}
	for ; idx < len(data); idx++ {
		p.Push(data[idx])
		p.Push(uint32(idx) + memStart)
		p.Op(vm.MSTORE8)
	}
	return p
}

// Sstore stores value to the given slot.
func (p *Program) Sstore(slot any, value any) *Program {
	p.Push(value)
	p.Push(slot)
	return p.Op(vm.SSTORE)
}

// Return emits a RETURN of memory[offset:offset+len].
func (p *Program) Return(offset, len int) *Program {
	p.Push(len)
	p.Push(offset)
	return p.Op(vm.RETURN)
}

// ReturnData loads data into memory and returns it.
func (p *Program) ReturnData(data []byte) *Program {
	p.Mstore(data, 0)
	return p.Return(0, len(data))
}

// Revert emits a REVERT of memory[offset:offset+len].
func (p *Program) Revert(offset, len int) *Program {
	p.Push(len)
	p.Push(offset)
	return p.Op(vm.REVERT)
}

// Call emits a CALL. A nil gas uses the GAS opcode to forward everything.
func (p *Program) Call(gas *uint256.Int, address, value, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset).Push(value)
	p.Push(address)
	if gas == nil {
		p.Op(vm.GAS)
	} else {
		p.doPush(gas)
	}
	return p.Op(vm.CALL)
}

// DelegateCall emits a DELEGATECALL. A nil gas forwards everything.
func (p *Program) DelegateCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset)
	p.Push(address)
	if gas == nil {
		p.Op(vm.GAS)
	} else {
		p.doPush(gas)
	}
	return p.Op(vm.DELEGATECALL)
}

// StaticCall emits a STATICCALL. A nil gas forwards everything.
func (p *Program) StaticCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset)
	p.Push(address)
	if gas == nil {
		p.Op(vm.GAS)
	} else {
		p.doPush(gas)
	}
	return p.Op(vm.STATICCALL)
}

// Create2 loads code into memory and emits a CREATE2 with the given salt.
// Leaves zero or the created address on the stack.
func (p *Program) Create2(code []byte, salt any) *Program {
	p.Mstore(code, 0)
	return p.Push(salt).
		Push(len(code)).
		Push(0).
		Push(0).
		Op(vm.CREATE2)
}

// Selfdestruct pushes beneficiary and emits SELFDESTRUCT.
func (p *Program) Selfdestruct(beneficiary any) *Program {
	p.Push(beneficiary)
	return p.Op(vm.SELFDESTRUCT)
}
