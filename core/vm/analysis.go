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
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"github.com/evmint/evmint/common"
)

// instruction is one decoded instruction. Push immediates are decoded at
// analysis time, so immediate bytes are never instruction starts and the
// interpreter never re-reads the raw code.
type instruction struct {
	op OpCode

	// pos is the byte offset of the instruction in the original code.
	pos uint32

	// block is the ordinal of the basic block this instruction opens, or -1
	// if it is not a block leader.
	block int32

	// pushVal is the decoded immediate of PUSH1..PUSH32, zero-padded when
	// the code ends mid-immediate.
	pushVal uint256.Int
}

// blockInfo is the per-revision summary of one basic block: the summed
// constant gas of its instructions, the minimum stack height required on
// entry and the maximum stack growth above the entry height.
type blockInfo struct {
	gasCost        int64
	stackReq       int
	stackMaxGrowth int
}

// revMetrics carries everything about a code object that depends on the
// revision's constant-gas table.
type revMetrics struct {
	blocks []blockInfo

	// corrections holds, per instruction, the not-yet-executed remainder of
	// its block's constant gas. Only populated for instructions that observe
	// gas (GAS, call family, create family, SSTORE); the interpreter adds it
	// back to reconstruct the exact per-instruction gas value under block
	// precharging.
	corrections []int64
}

// AnalyzedCode is an immutable analyzed form of a bytecode string. It can be
// executed any number of times, concurrently, under any revision.
type AnalyzedCode struct {
	code         []byte
	instructions []instruction
	numBlocks    int

	// Sorted jumpdest byte offsets with their instruction indices.
	jumpdestPos []uint32
	jumpdestIdx []int32

	metricsOnce [numRevisions]sync.Once
	metrics     [numRevisions]*revMetrics
}

// Analyze decodes code into its executable form. It is total: any byte string
// is valid input and analysis never fails. Undefined instructions are decoded
// as-is and fail at execution time under the revision that runs them.
func Analyze(code []byte) *AnalyzedCode {
	c := &AnalyzedCode{
		code:         common.CopyBytes(code),
		instructions: make([]instruction, 0, len(code)+1),
	}
	for i := 0; i < len(code); {
		op := OpCode(code[i])
		in := instruction{op: op, pos: uint32(i), block: -1}
		if op.IsPush() {
			size := int(op - PUSH1 + 1)
			imm := make([]byte, size)
			copy(imm, code[i+1:min(i+1+size, len(code))])
			in.pushVal.SetBytes(imm)
			i += 1 + size
		} else {
			i++
		}
		if op == JUMPDEST {
			c.jumpdestPos = append(c.jumpdestPos, in.pos)
			c.jumpdestIdx = append(c.jumpdestIdx, int32(len(c.instructions)))
		}
		c.instructions = append(c.instructions, in)
	}
	// One synthetic STOP so running off the end is an implicit stop and the
	// loop never reads out of bounds.
	c.instructions = append(c.instructions, instruction{op: STOP, pos: uint32(len(code)), block: -1})

	c.markBlocks()
	return c
}

// markBlocks assigns block ordinals to leaders. A block starts at instruction
// zero, at every JUMPDEST and after every instruction that ends a block.
func (c *AnalyzedCode) markBlocks() {
	leader := true
	for i := range c.instructions {
		in := &c.instructions[i]
		if in.op == JUMPDEST {
			leader = true
		}
		if leader {
			in.block = int32(c.numBlocks)
			c.numBlocks++
			leader = false
		}
		switch in.op {
		case JUMP, JUMPI, STOP, RETURN, REVERT, SELFDESTRUCT:
			leader = true
		}
	}
}

// Code returns the raw bytecode the object was analyzed from.
func (c *AnalyzedCode) Code() []byte {
	return common.CopyBytes(c.code)
}

// ValidJumpdest reports whether dest points to a JUMPDEST instruction that is
// not part of push data.
func (c *AnalyzedCode) ValidJumpdest(dest uint64) bool {
	_, ok := c.jumpdestTarget(dest)
	return ok
}

// jumpdestTarget resolves a jump destination byte offset to an instruction
// index.
func (c *AnalyzedCode) jumpdestTarget(dest uint64) (int, bool) {
	i := sort.Search(len(c.jumpdestPos), func(i int) bool {
		return uint64(c.jumpdestPos[i]) >= dest
	})
	if i < len(c.jumpdestPos) && uint64(c.jumpdestPos[i]) == dest {
		return int(c.jumpdestIdx[i]), true
	}
	return 0, false
}

// revisionMetrics returns the block metrics for rev, building them on first
// use. Building is idempotent and synchronized; the result is shared.
func (c *AnalyzedCode) revisionMetrics(rev Revision) *revMetrics {
	c.metricsOnce[rev].Do(func() {
		c.metrics[rev] = c.buildMetrics(rev)
	})
	return c.metrics[rev]
}

// gasObserver reports whether op needs the exact per-instruction gas value.
func gasObserver(op OpCode) bool {
	switch op {
	case GAS, CALL, CALLCODE, DELEGATECALL, STATICCALL, CREATE, CREATE2, SSTORE:
		return true
	}
	return false
}

func (c *AnalyzedCode) buildMetrics(rev Revision) *revMetrics {
	costs := gasTables[rev]
	m := &revMetrics{
		blocks:      make([]blockInfo, c.numBlocks),
		corrections: make([]int64, len(c.instructions)),
	}

	type observer struct {
		idx    int
		prefix int64 // block constant gas charged up to and including idx
	}
	var (
		blk       *blockInfo
		observers []observer
		height    int // stack height relative to block entry
	)
	closeBlock := func() {
		if blk == nil {
			return
		}
		for _, o := range observers {
			m.corrections[o.idx] = blk.gasCost - o.prefix
		}
		observers = observers[:0]
	}
	for i := range c.instructions {
		in := &c.instructions[i]
		if in.block >= 0 {
			closeBlock()
			blk = &m.blocks[in.block]
			height = 0
		}
		if cost := costs[in.op]; cost > 0 {
			blk.gasCost += int64(cost)
		}
		props := opStackProps[in.op]
		if need := int(props.required) - height; need > blk.stackReq {
			blk.stackReq = need
		}
		height += int(props.change)
		if height > blk.stackMaxGrowth {
			blk.stackMaxGrowth = height
		}
		if gasObserver(in.op) {
			observers = append(observers, observer{idx: i, prefix: blk.gasCost})
		}
	}
	closeBlock()
	return m
}
