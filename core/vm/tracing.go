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

package vm

import "github.com/holiman/uint256"

// ScopeContext exposes the frame state to hooks. The underlying slices are
// live views; hooks must not retain or mutate them.
type ScopeContext struct {
	stack  *Stack
	memory *Memory
}

// StackData returns the stack, bottom first.
func (s *ScopeContext) StackData() []uint256.Int {
	if s.stack == nil {
		return nil
	}
	return s.stack.Data()
}

// MemoryData returns the memory contents.
func (s *ScopeContext) MemoryData() []byte {
	if s.memory == nil {
		return nil
	}
	return s.memory.Data()
}

// Hooks observe an execution. All fields are optional. A hook that panics is
// silently ignored; tracing never alters the outcome of an execution.
type Hooks struct {
	// OnStart fires once, before the first instruction.
	OnStart func(rev Revision, msg *Message, code []byte)
	// OnOpcode fires before each instruction with the code offset, the
	// opcode and the gas remaining after the block precharge.
	OnOpcode func(pc uint64, op OpCode, gas int64, scope *ScopeContext)
	// OnFault fires when an instruction terminates the frame abnormally.
	OnFault func(pc uint64, op OpCode, status StatusCode)
	// OnEnd fires once with the frame's final output.
	OnEnd func(out *Output)
}

func (st *ExecutionState) traceStart() {
	st.started = true
	if st.hooks == nil || st.hooks.OnStart == nil {
		return
	}
	defer func() { _ = recover() }()
	st.hooks.OnStart(st.rev, st.msg, st.code.Code())
}

func (st *ExecutionState) traceOpcode(in *instruction) {
	if st.hooks == nil || st.hooks.OnOpcode == nil {
		return
	}
	defer func() { _ = recover() }()
	scope := &ScopeContext{stack: st.stack, memory: st.memory}
	st.hooks.OnOpcode(uint64(in.pos), in.op, st.gasLeft, scope)
}

func (st *ExecutionState) traceFault(status StatusCode) {
	if st.hooks == nil || st.hooks.OnFault == nil {
		return
	}
	if st.pc >= len(st.code.instructions) {
		return
	}
	defer func() { _ = recover() }()
	in := &st.code.instructions[st.pc]
	st.hooks.OnFault(uint64(in.pos), in.op, status)
}

func (st *ExecutionState) traceEnd(out *Output) {
	if st.hooks == nil || st.hooks.OnEnd == nil || !st.started {
		return
	}
	defer func() { _ = recover() }()
	st.hooks.OnEnd(out)
}
