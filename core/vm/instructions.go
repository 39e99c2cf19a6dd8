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
	"golang.org/x/crypto/sha3"

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/params"
)

func opAdd(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Add(&x, y)
}

func opSub(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Sub(&x, y)
}

func opMul(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Mul(&x, y)
}

func opDiv(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Div(&x, y)
}

func opSdiv(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.SDiv(&x, y)
}

func opMod(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Mod(&x, y)
}

func opSmod(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.SMod(&x, y)
}

func opAddmod(st *ExecutionState) {
	x, y, z := st.stack.pop(), st.stack.pop(), st.stack.peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(&x, &y, z)
	}
}

func opMulmod(st *ExecutionState) {
	x, y, z := st.stack.pop(), st.stack.pop(), st.stack.peek()
	z.MulMod(&x, &y, z)
}

// opExp charges per byte of the exponent, 10 gas before Spurious Dragon and
// 50 from it on.
func opExp(st *ExecutionState) StatusCode {
	base, exponent := st.stack.pop(), st.stack.peek()
	expByte := params.ExpByteFrontier
	if st.rev >= SpuriousDragon {
		expByte = params.ExpByteEIP158
	}
	if !st.useGas(int64(expByte) * int64(exponent.ByteLen())) {
		return StatusOutOfGas
	}
	exponent.Exp(&base, exponent)
	return statusNext
}

func opSignExtend(st *ExecutionState) {
	back, num := st.stack.pop(), st.stack.peek()
	num.ExtendSign(num, &back)
}

func opLt(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
}

func opGt(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
}

func opSlt(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
}

func opSgt(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
}

func opEq(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
}

func opIszero(st *ExecutionState) {
	x := st.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
}

func opAnd(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.And(&x, y)
}

func opOr(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Or(&x, y)
}

func opXor(st *ExecutionState) {
	x, y := st.stack.pop(), st.stack.peek()
	y.Xor(&x, y)
}

func opNot(st *ExecutionState) {
	x := st.stack.peek()
	x.Not(x)
}

func opByte(st *ExecutionState) {
	th, val := st.stack.pop(), st.stack.peek()
	val.Byte(&th)
}

// opSHL implements Shift Left
// The SHL instruction (shift left) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the left by arg1 number of bits.
func opSHL(st *ExecutionState) {
	shift, value := st.stack.pop(), st.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

// opSHR implements Logical Shift Right
// The SHR instruction (logical shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with zero fill.
func opSHR(st *ExecutionState) {
	shift, value := st.stack.pop(), st.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

// opSAR implements Arithmetic Shift Right
// The SAR instruction (arithmetic shift right) pops 2 values from the stack, first arg1 and then arg2,
// and pushes on the stack arg2 shifted to the right by arg1 number of bits with sign extension.
func opSAR(st *ExecutionState) {
	shift, value := st.stack.pop(), st.stack.peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			// Max negative shift: all bits set
			value.SetAllOne()
		}
		return
	}
	n := uint(shift.Uint64())
	value.SRsh(value, n)
}

func opKeccak256(st *ExecutionState) StatusCode {
	offset := st.stack.pop()
	size := st.stack.peek()
	span, ok := st.region(&offset, size)
	if !ok {
		return StatusOutOfGas
	}
	if span.size > 0 && !st.useGas(int64(params.Keccak256WordGas)*int64(toWordSize(span.size))) {
		return StatusOutOfGas
	}
	data := st.memory.GetPtr(span.offset, span.size)

	if st.hasher == nil {
		st.hasher = sha3.NewLegacyKeccak256().(keccakState)
	} else {
		st.hasher.Reset()
	}
	st.hasher.Write(data)
	st.hasher.Read(st.hasherBuf[:])

	size.SetBytes32(st.hasherBuf[:])
	return statusNext
}

func opCallDataLoad(st *ExecutionState) {
	x := st.stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(st.msg.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
}

func opCallDataSize(st *ExecutionState) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(len(st.msg.Input))))
}

func opCallDataCopy(st *ExecutionState) StatusCode {
	var (
		memOffset  = st.stack.pop()
		dataOffset = st.stack.pop()
		length     = st.stack.pop()
	)
	span, ok := st.region(&memOffset, &length)
	if !ok {
		return StatusOutOfGas
	}
	if span.size == 0 {
		return statusNext
	}
	if !st.copyCost(span.size) {
		return StatusOutOfGas
	}
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset64 = math.MaxUint64
	}
	st.memory.Set(span.offset, span.size, getData(st.msg.Input, offset64, span.size))
	return statusNext
}

func opCodeSize(st *ExecutionState) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(len(st.code.code))))
}

func opCodeCopy(st *ExecutionState) StatusCode {
	var (
		memOffset  = st.stack.pop()
		codeOffset = st.stack.pop()
		length     = st.stack.pop()
	)
	span, ok := st.region(&memOffset, &length)
	if !ok {
		return StatusOutOfGas
	}
	if span.size == 0 {
		return statusNext
	}
	if !st.copyCost(span.size) {
		return StatusOutOfGas
	}
	offset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		offset64 = math.MaxUint64
	}
	st.memory.Set(span.offset, span.size, getData(st.code.code, offset64, span.size))
	return statusNext
}

func opReturnDataSize(st *ExecutionState) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(len(st.returnData))))
}

// opReturnDataCopy is the only copy instruction that faults instead of
// zero-padding when the source range leaves the buffer.
func opReturnDataCopy(st *ExecutionState) StatusCode {
	var (
		memOffset  = st.stack.pop()
		dataOffset = st.stack.pop()
		length     = st.stack.pop()
	)
	span, ok := st.region(&memOffset, &length)
	if !ok {
		return StatusOutOfGas
	}
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow || offset64 > uint64(len(st.returnData)) ||
		span.size > uint64(len(st.returnData))-offset64 {
		return StatusInvalidMemoryAccess
	}
	if span.size == 0 {
		return statusNext
	}
	if !st.copyCost(span.size) {
		return StatusOutOfGas
	}
	st.memory.Set(span.offset, span.size, st.returnData[offset64:offset64+span.size])
	return statusNext
}

func opMload(st *ExecutionState) StatusCode {
	v := st.stack.peek()
	offset, ok := st.regionFixed(v, 32)
	if !ok {
		return StatusOutOfGas
	}
	v.SetBytes(st.memory.GetPtr(offset, 32))
	return statusNext
}

func opMstore(st *ExecutionState) StatusCode {
	mStart, val := st.stack.pop(), st.stack.pop()
	offset, ok := st.regionFixed(&mStart, 32)
	if !ok {
		return StatusOutOfGas
	}
	st.memory.Set32(offset, &val)
	return statusNext
}

func opMstore8(st *ExecutionState) StatusCode {
	mStart, val := st.stack.pop(), st.stack.pop()
	offset, ok := st.regionFixed(&mStart, 1)
	if !ok {
		return StatusOutOfGas
	}
	st.memory.Set(offset, 1, []byte{byte(val.Uint64())})
	return statusNext
}

func opMsize(st *ExecutionState) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(st.memory.Len())))
}

func opJump(st *ExecutionState) StatusCode {
	dst := st.stack.pop()
	if !dst.IsUint64() {
		return StatusBadJumpDestination
	}
	target, ok := st.code.jumpdestTarget(dst.Uint64())
	if !ok {
		return StatusBadJumpDestination
	}
	st.pc = target
	return statusJump
}

func opJumpi(st *ExecutionState) StatusCode {
	dst, cond := st.stack.pop(), st.stack.pop()
	if cond.IsZero() {
		return statusNext
	}
	if !dst.IsUint64() {
		return StatusBadJumpDestination
	}
	target, ok := st.code.jumpdestTarget(dst.Uint64())
	if !ok {
		return StatusBadJumpDestination
	}
	st.pc = target
	return statusJump
}

func opPC(st *ExecutionState, in *instruction) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(in.pos)))
}

// opGas pushes the exact remaining gas, compensating the block precharge
// with the recorded correction.
func opGas(st *ExecutionState, metrics *revMetrics) {
	st.stack.push(new(uint256.Int).SetUint64(uint64(st.correctedGas(metrics.corrections[st.pc]))))
}

func opReturn(st *ExecutionState) StatusCode {
	offset, size := st.stack.pop(), st.stack.pop()
	span, ok := st.region(&offset, &size)
	if !ok {
		return StatusOutOfGas
	}
	st.output = st.memory.GetCopy(span.offset, span.size)
	return StatusSuccess
}

func opRevert(st *ExecutionState) StatusCode {
	offset, size := st.stack.pop(), st.stack.pop()
	span, ok := st.region(&offset, &size)
	if !ok {
		return StatusOutOfGas
	}
	st.output = st.memory.GetCopy(span.offset, span.size)
	st.reverted = true
	return StatusSuccess
}

// getData returns a slice from the data based on the start and size and pads
// up to size with zero's. This function is overflow safe.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	return common.RightPadBytes(data[start:end], int(size))
}
