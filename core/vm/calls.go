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

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/params"
)

// stepCall drives CALL, CALLCODE, DELEGATECALL and STATICCALL. Memory regions
// are verified only after the Berlin access charge because both effects are
// observable on out-of-gas.
func (st *ExecutionState) stepCall(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		s.gasReq = st.stack.pop()
		dst := st.stack.pop()
		if s.op == CALL || s.op == CALLCODE {
			s.value = st.stack.pop()
		}
		s.inOff = st.stack.pop()
		s.inSize = st.stack.pop()
		s.outOff = st.stack.pop()
		s.outSize = st.stack.pop()
		st.stack.push(new(uint256.Int))

		s.hasValue = !s.value.IsZero()
		if s.op == CALL && s.hasValue && st.msg.Static {
			return StatusStaticModeViolation
		}
		s.addr = common.Uint256ToAddress(&dst)
		if st.rev >= Berlin {
			return s.request(InterruptAccessAccount, 1)
		}
		return st.callAfterAccess(s)
	case 1:
		if data.(AccessAccountStatus).Status == ColdAccess {
			if !st.useGas(additionalColdAccountAccessCost) {
				return StatusOutOfGas
			}
		}
		return st.callAfterAccess(s)
	case 2:
		if !data.(AccountExistsStatus).Exists {
			s.cost += int64(params.CallNewAccountGas)
		}
		return st.callFinishGas(s)
	case 3:
		if balance := data.(Balance).Balance; balance.Lt(&s.callMsg.Value) {
			return statusNext
		}
		s.addr = s.callMsg.CodeAddress
		return s.request(InterruptCall, 4)
	default:
		out := data.(CallOutput).Output
		st.returnData = out.Data
		if out.Status == StatusSuccess {
			st.stack.peek().SetOne()
		}
		if s.outSpan.size > 0 && len(st.returnData) > 0 {
			n := min(s.outSpan.size, uint64(len(st.returnData)))
			st.memory.Set(s.outSpan.offset, n, st.returnData[:n])
		}
		st.gasLeft -= s.callMsg.Gas - out.GasLeft
		st.refund += out.GasRefund
		return statusNext
	}
}

// callAfterAccess verifies the argument regions, builds the nested message
// and, for value-bearing plain calls (and all pre-Spurious Dragon plain
// calls), asks whether the destination exists before pricing the transfer.
func (st *ExecutionState) callAfterAccess(s *suspension) StatusCode {
	inSpan, ok := st.region(&s.inOff, &s.inSize)
	if !ok {
		return StatusOutOfGas
	}
	outSpan, ok := st.region(&s.outOff, &s.outSize)
	if !ok {
		return StatusOutOfGas
	}
	s.outSpan = outSpan

	msg := &Message{
		Depth:       st.msg.Depth + 1,
		Static:      st.msg.Static,
		Sender:      st.msg.Recipient,
		CodeAddress: s.addr,
	}
	switch s.op {
	case CALL:
		msg.Kind = Call
		msg.Recipient = s.addr
		msg.Value = s.value
	case CALLCODE:
		msg.Kind = CallCode
		msg.Recipient = st.msg.Recipient
		msg.Value = s.value
	case DELEGATECALL:
		msg.Kind = DelegateCall
		msg.Recipient = st.msg.Recipient
		msg.Sender = st.msg.Sender
		msg.Value = st.msg.Value
	case STATICCALL:
		msg.Kind = StaticCall
		msg.Recipient = s.addr
		msg.Static = true
	}
	if inSpan.size > 0 {
		msg.Input = st.memory.GetCopy(inSpan.offset, inSpan.size)
	}
	s.callMsg = msg

	s.cost = 0
	if s.hasValue {
		s.cost = int64(params.CallValueTransferGas)
	}
	if s.op == CALL && (s.hasValue || st.rev < SpuriousDragon) {
		return s.request(InterruptAccountExists, 2)
	}
	return st.callFinishGas(s)
}

// callFinishGas charges the constant transfer costs, caps the forwarded gas
// and either skips the call (depth or balance) or requests it from the host.
func (st *ExecutionState) callFinishGas(s *suspension) StatusCode {
	if !st.useGas(s.cost) {
		return StatusOutOfGas
	}

	msgGas := int64(math.MaxInt64)
	if s.gasReq.IsUint64() && s.gasReq.Uint64() <= math.MaxInt64 {
		msgGas = int64(s.gasReq.Uint64())
	}
	corrected := st.correctedGas(s.correction)
	if st.rev >= TangerineWhistle {
		// EIP-150: retain at least 1/64th of the remaining gas.
		msgGas = min(msgGas, corrected-corrected/64)
	} else if msgGas > corrected {
		return StatusOutOfGas
	}
	s.callMsg.Gas = msgGas
	if s.hasValue {
		s.callMsg.Gas += int64(params.CallStipend)
		st.gasLeft += int64(params.CallStipend)
	}

	st.returnData = nil
	if st.msg.Depth >= int(params.CallCreateDepth) {
		return statusNext
	}
	if s.hasValue && s.op != DELEGATECALL {
		s.addr = st.msg.Recipient
		return s.request(InterruptGetBalance, 3)
	}
	s.addr = s.callMsg.CodeAddress
	return s.request(InterruptCall, 4)
}

// stepCreate drives CREATE and CREATE2.
func (st *ExecutionState) stepCreate(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		if st.msg.Static {
			return StatusStaticModeViolation
		}
		endowment := st.stack.pop()
		offset, size := st.stack.pop(), st.stack.pop()
		span, ok := st.region(&offset, &size)
		if !ok {
			return StatusOutOfGas
		}
		var salt common.Hash
		if s.op == CREATE2 {
			saltWord := st.stack.pop()
			salt = common.Uint256ToHash(&saltWord)
			if !st.useGas(int64(params.Keccak256WordGas) * int64(toWordSize(span.size))) {
				return StatusOutOfGas
			}
		}
		st.stack.push(new(uint256.Int))

		st.returnData = nil
		if st.msg.Depth >= int(params.CallCreateDepth) {
			return statusNext
		}

		msg := &Message{
			Kind:   Create,
			Depth:  st.msg.Depth + 1,
			Sender: st.msg.Recipient,
			Value:  endowment,
			Salt:   salt,
		}
		if s.op == CREATE2 {
			msg.Kind = Create2
		}
		if span.size > 0 {
			msg.Input = st.memory.GetCopy(span.offset, span.size)
		}
		corrected := st.correctedGas(s.correction)
		if st.rev >= TangerineWhistle {
			msg.Gas = corrected - corrected/64
		} else {
			msg.Gas = corrected
		}
		s.callMsg = msg

		if !endowment.IsZero() {
			s.addr = st.msg.Recipient
			return s.request(InterruptGetBalance, 1)
		}
		s.addr = st.msg.Recipient
		return s.request(InterruptCall, 2)
	case 1:
		if balance := data.(Balance).Balance; balance.Lt(&s.callMsg.Value) {
			return statusNext
		}
		s.addr = st.msg.Recipient
		return s.request(InterruptCall, 2)
	default:
		out := data.(CallOutput).Output
		st.returnData = out.Data
		if out.Status == StatusSuccess && out.CreateAddress != nil {
			st.stack.peek().Set(out.CreateAddress.Uint256())
		}
		st.gasLeft -= s.callMsg.Gas - out.GasLeft
		st.refund += out.GasRefund
		return statusNext
	}
}
