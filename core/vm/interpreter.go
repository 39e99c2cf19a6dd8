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
	"hash"

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/params"
)

// keccakState wraps sha3.state. In addition to the usual hash methods, it
// also supports Read to get a variable amount of data from the hash state.
// Read is faster than Sum because it doesn't copy the internal state, but
// also modifies the internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// ExecutionState is the complete mutable state of one frame: stack, memory,
// program counter, remaining gas, buffers and, while suspended, the pending
// host operation. It is owned by exactly one Interrupt at a time and is never
// shared.
type ExecutionState struct {
	code *AnalyzedCode
	msg  *Message
	rev  Revision

	stack  *Stack
	memory *Memory

	// pc indexes code.instructions, not bytes.
	pc      int
	gasLeft int64
	refund  int64

	returnData []byte
	output     []byte
	reverted   bool

	// susp is non-nil while a host operation is waiting to be resumed.
	susp *suspension

	hooks     *Hooks
	started   bool
	hasher    keccakState
	hasherBuf common.Hash
}

// ExecuteResumable prepares an execution of code under msg and rev without a
// host. The returned Interrupt has kind InterruptStart; resume it with nil to
// run to the first host dependency or to completion. hooks may be nil.
func (c *AnalyzedCode) ExecuteResumable(msg *Message, rev Revision, hooks *Hooks) *Interrupt {
	st := &ExecutionState{
		code:    c,
		msg:     msg,
		rev:     rev,
		stack:   newstack(),
		memory:  NewMemory(),
		gasLeft: msg.Gas,
		hooks:   hooks,
	}
	return newInterrupt(st)
}

// run drives the loop until the frame terminates or a host operation
// suspends it.
func (st *ExecutionState) run() (*Output, *Interrupt) {
	metrics := st.code.revisionMetrics(st.rev)
	costs := gasTables[st.rev]
	for {
		in := &st.code.instructions[st.pc]
		if in.block >= 0 {
			blk := &metrics.blocks[in.block]
			if st.gasLeft -= blk.gasCost; st.gasLeft < 0 {
				return st.failure(StatusOutOfGas), nil
			}
			if height := st.stack.len(); height < blk.stackReq {
				return st.failure(StatusStackUnderflow), nil
			} else if height+blk.stackMaxGrowth > int(params.StackLimit) {
				return st.failure(StatusStackOverflow), nil
			}
		}
		if costs[in.op] == undefinedGas {
			return st.failure(StatusUndefinedInstruction), nil
		}
		st.traceOpcode(in)

		switch status := st.step(in, metrics); status {
		case statusNext:
			st.pc++
		case statusJump:
			// pc set by the instruction
		case statusSuspended:
			return nil, newInterrupt(st)
		case StatusSuccess:
			return st.success(), nil
		default:
			return st.failure(status), nil
		}
	}
}

// step executes a single instruction. It returns statusNext or statusJump to
// continue, statusSuspended when a host interrupt is pending, StatusSuccess
// on normal termination and any other status on failure.
func (st *ExecutionState) step(in *instruction, metrics *revMetrics) StatusCode {
	switch op := in.op; op {
	case STOP:
		return StatusSuccess

	case ADD:
		opAdd(st)
	case MUL:
		opMul(st)
	case SUB:
		opSub(st)
	case DIV:
		opDiv(st)
	case SDIV:
		opSdiv(st)
	case MOD:
		opMod(st)
	case SMOD:
		opSmod(st)
	case ADDMOD:
		opAddmod(st)
	case MULMOD:
		opMulmod(st)
	case EXP:
		return opExp(st)
	case SIGNEXTEND:
		opSignExtend(st)

	case LT:
		opLt(st)
	case GT:
		opGt(st)
	case SLT:
		opSlt(st)
	case SGT:
		opSgt(st)
	case EQ:
		opEq(st)
	case ISZERO:
		opIszero(st)
	case AND:
		opAnd(st)
	case OR:
		opOr(st)
	case XOR:
		opXor(st)
	case NOT:
		opNot(st)
	case BYTE:
		opByte(st)
	case SHL:
		opSHL(st)
	case SHR:
		opSHR(st)
	case SAR:
		opSAR(st)

	case KECCAK256:
		return opKeccak256(st)

	case ADDRESS:
		st.stack.push(st.msg.Recipient.Uint256())
	case CALLER:
		st.stack.push(st.msg.Sender.Uint256())
	case CALLVALUE:
		st.stack.push(&st.msg.Value)
	case CALLDATALOAD:
		opCallDataLoad(st)
	case CALLDATASIZE:
		opCallDataSize(st)
	case CALLDATACOPY:
		return opCallDataCopy(st)
	case CODESIZE:
		opCodeSize(st)
	case CODECOPY:
		return opCodeCopy(st)
	case RETURNDATASIZE:
		opReturnDataSize(st)
	case RETURNDATACOPY:
		return opReturnDataCopy(st)

	case POP:
		st.stack.pop()
	case MLOAD:
		return opMload(st)
	case MSTORE:
		return opMstore(st)
	case MSTORE8:
		return opMstore8(st)
	case JUMP:
		return opJump(st)
	case JUMPI:
		return opJumpi(st)
	case PC:
		opPC(st, in)
	case MSIZE:
		opMsize(st)
	case GAS:
		opGas(st, metrics)
	case JUMPDEST:
		// block leader, nothing to execute

	case RETURN:
		return opReturn(st)
	case REVERT:
		return opRevert(st)
	case INVALID:
		return StatusInvalidInstruction

	case BALANCE, EXTCODESIZE, EXTCODEHASH, EXTCODECOPY, SELFBALANCE,
		ORIGIN, GASPRICE, COINBASE, TIMESTAMP, NUMBER, DIFFICULTY,
		GASLIMIT, CHAINID, BASEFEE, BLOCKHASH,
		SLOAD, SSTORE, LOG0, LOG1, LOG2, LOG3, LOG4,
		CREATE, CREATE2, CALL, CALLCODE, DELEGATECALL, STATICCALL,
		SELFDESTRUCT:
		return st.beginHostOp(in, metrics)

	default:
		switch {
		case op.IsPush():
			st.stack.push(&in.pushVal)
		case op >= DUP1 && op <= DUP16:
			st.stack.dup(int(op-DUP1) + 1)
		case op >= SWAP1 && op <= SWAP16:
			st.stack.swap(int(op-SWAP1) + 1)
		default:
			// unreachable: undefined opcodes are rejected before dispatch
			return StatusUndefinedInstruction
		}
	}
	return statusNext
}

// beginHostOp opens the phase machine of a host-dependent instruction. The
// first phases may complete without suspending at all (e.g. a pre-Berlin
// EXTCODECOPY of zero bytes).
func (st *ExecutionState) beginHostOp(in *instruction, metrics *revMetrics) StatusCode {
	st.susp = &suspension{op: in.op, correction: metrics.corrections[st.pc]}
	return st.resumeStep(nil)
}

// correctedGas is the exact gas remaining at the current instruction,
// compensating for the block's precharged but not yet executed constant
// costs. Valid only for gas-observing instructions, which have a recorded
// correction.
func (st *ExecutionState) correctedGas(correction int64) int64 {
	return st.gasLeft + correction
}

// success builds the Output of a normally terminated frame. REVERT keeps its
// gas but forfeits the refund counter; the host journal rolls the state back.
func (st *ExecutionState) success() *Output {
	out := &Output{
		Status:  StatusSuccess,
		GasLeft: st.gasLeft,
		Data:    st.output,
	}
	if st.reverted {
		out.Status = StatusRevert
	} else {
		out.GasRefund = st.refund
	}
	st.traceEnd(out)
	st.release()
	return out
}

// failure builds the Output of an abnormally terminated frame. All gas is
// consumed, nothing is returned.
func (st *ExecutionState) failure(status StatusCode) *Output {
	st.traceFault(status)
	out := &Output{Status: status}
	st.traceEnd(out)
	st.release()
	return out
}

func (st *ExecutionState) release() {
	if st.stack != nil {
		returnStack(st.stack)
		st.stack = nil
	}
	st.memory = nil
	st.susp = nil
}
