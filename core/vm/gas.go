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

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/evmint/evmint/params"
)

// maxBufferSize bounds every memory offset and size. Anything beyond it can
// never be paid for, so it is rejected as out of gas before doing arithmetic
// that could overflow.
const maxBufferSize = uint64(math.MaxUint32)

// toWordSize returns the ceiled word size required for memory expansion.
func toWordSize(size uint64) uint64 {
	return (size + 31) / 32
}

// memoryCost is the total cost of a memory of the given word size:
// 3w + w²/512.
func memoryCost(words uint64) int64 {
	return int64(params.MemoryGas)*int64(words) + int64(words)*int64(words)/int64(params.QuadCoeffDiv)
}

// useGas deducts cost and reports whether gas remains. Callers must stop on
// false; gasLeft is clamped when the frame terminates.
func (st *ExecutionState) useGas(cost int64) bool {
	st.gasLeft -= cost
	return st.gasLeft >= 0
}

// copyCost charges 3 gas per word of copied data.
func (st *ExecutionState) copyCost(size uint64) bool {
	return st.useGas(int64(params.CopyGas) * int64(toWordSize(size)))
}

// memSpan is a verified, paid-for memory region.
type memSpan struct {
	offset uint64
	size   uint64
}

// grow charges memory expansion up to newSize bytes and resizes the backing
// store to a word boundary. The charge is the cost difference between the new
// and the current word count, so repeated reservations of the same region are
// free.
func (st *ExecutionState) grow(newSize uint64) bool {
	if newSize <= uint64(st.memory.Len()) {
		return true
	}
	newWords := toWordSize(newSize)
	if !st.useGas(memoryCost(newWords) - memoryCost(st.memory.words())) {
		return false
	}
	st.memory.Resize(newWords * 32)
	return true
}

// regionFixed verifies an offset popped from the stack against a size known
// statically (MLOAD, MSTORE, MSTORE8).
func (st *ExecutionState) regionFixed(offset *uint256.Int, size uint64) (uint64, bool) {
	if !offset.IsUint64() || offset.Uint64() > maxBufferSize {
		return 0, false
	}
	off := offset.Uint64()
	if !st.grow(off + size) {
		return 0, false
	}
	return off, true
}

// region verifies an (offset, size) pair popped from the stack. A zero size
// is a no-op region: nothing is checked or charged, matching the consensus
// rule that zero-length accesses at wild offsets are free.
func (st *ExecutionState) region(offset, size *uint256.Int) (memSpan, bool) {
	if size.IsZero() {
		return memSpan{}, true
	}
	if !size.IsUint64() || size.Uint64() > maxBufferSize {
		return memSpan{}, false
	}
	off, ok := st.regionFixed(offset, size.Uint64())
	if !ok {
		return memSpan{}, false
	}
	return memSpan{offset: off, size: size.Uint64()}, true
}
