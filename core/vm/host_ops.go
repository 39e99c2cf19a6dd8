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
	"github.com/holiman/uint256"

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/params"
)

// Additional cold access costs (EIP-2929). The warm cost is part of the
// constant-gas table, so a cold access only pays the difference.
const (
	additionalColdAccountAccessCost = int64(params.ColdAccountAccessCostEIP2929 - params.WarmStorageReadCostEIP2929)
	additionalColdSloadCost         = int64(params.ColdSloadCostEIP2929 - params.WarmStorageReadCostEIP2929)
)

// stepSload: AccessStorage (Berlin on), then GetStorage.
func (st *ExecutionState) stepSload(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		key := st.stack.pop()
		s.addr = st.msg.Recipient
		s.slot = common.Uint256ToHash(&key)
		if st.rev >= Berlin {
			return s.request(InterruptAccessStorage, 1)
		}
		return s.request(InterruptGetStorage, 2)
	case 1:
		if data.(AccessStorageStatus).Status == ColdAccess {
			if !st.useGas(additionalColdSloadCost) {
				return StatusOutOfGas
			}
		}
		return s.request(InterruptGetStorage, 2)
	default:
		value := data.(StorageValue).Value
		st.stack.push(value.Uint256())
		return statusNext
	}
}

// stepSstore: sentry check, AccessStorage (Berlin on), then SetStorage and
// the cost matrix over the reported transition.
func (st *ExecutionState) stepSstore(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		if st.msg.Static {
			return StatusStaticModeViolation
		}
		// EIP-2200: leave headroom for the callee stipend.
		if st.rev >= Istanbul && st.correctedGas(s.correction) <= int64(params.SstoreSentryGasEIP2200) {
			return StatusOutOfGas
		}
		key, value := st.stack.pop(), st.stack.pop()
		s.addr = st.msg.Recipient
		s.slot = common.Uint256ToHash(&key)
		s.value = value
		if st.rev >= Berlin {
			return s.request(InterruptAccessStorage, 1)
		}
		return s.request(InterruptSetStorage, 2)
	case 1:
		if data.(AccessStorageStatus).Status == ColdAccess {
			s.cost = int64(params.ColdSloadCostEIP2929)
		}
		return s.request(InterruptSetStorage, 2)
	default:
		status := data.(StorageStatusInfo).Status
		cost := s.cost
		switch status {
		case StorageUnchanged, StorageModifiedAgain:
			switch {
			case st.rev >= Berlin:
				cost += int64(params.WarmStorageReadCostEIP2929)
			case st.rev == Istanbul:
				cost = 800
			case st.rev == Constantinople:
				cost = 200
			default:
				cost = int64(params.SstoreResetGas)
			}
		case StorageModified, StorageDeleted:
			if st.rev >= Berlin {
				cost += int64(params.SstoreResetGas) - int64(params.ColdSloadCostEIP2929)
			} else {
				cost = int64(params.SstoreResetGas)
			}
		case StorageAdded:
			cost += int64(params.SstoreSetGas)
		}
		if !st.useGas(cost) {
			return StatusOutOfGas
		}
		if status == StorageDeleted {
			if st.rev >= London {
				st.refund += int64(params.SstoreClearsScheduleRefundEIP3529)
			} else {
				st.refund += int64(params.SstoreRefundGas)
			}
		}
		return statusNext
	}
}

// stepAccountQuery drives BALANCE, EXTCODESIZE and EXTCODEHASH: AccessAccount
// (Berlin on), then the query itself.
func (st *ExecutionState) stepAccountQuery(s *suspension, data ResumeData) StatusCode {
	query := func() StatusCode {
		switch s.op {
		case BALANCE:
			return s.request(InterruptGetBalance, 2)
		case EXTCODESIZE:
			return s.request(InterruptGetCodeSize, 2)
		default:
			return s.request(InterruptGetCodeHash, 2)
		}
	}
	switch s.step {
	case 0:
		addr := st.stack.pop()
		s.addr = common.Uint256ToAddress(&addr)
		if st.rev >= Berlin {
			return s.request(InterruptAccessAccount, 1)
		}
		return query()
	case 1:
		if data.(AccessAccountStatus).Status == ColdAccess {
			if !st.useGas(additionalColdAccountAccessCost) {
				return StatusOutOfGas
			}
		}
		return query()
	default:
		switch s.op {
		case BALANCE:
			balance := data.(Balance).Balance
			st.stack.push(&balance)
		case EXTCODESIZE:
			st.stack.push(new(uint256.Int).SetUint64(data.(CodeSize).Size))
		default:
			hash := data.(CodeHash).Hash
			st.stack.push(hash.Uint256())
		}
		return statusNext
	}
}

// stepSelfBalance never hits the access set: the executing account is warm by
// definition.
func (st *ExecutionState) stepSelfBalance(s *suspension, data ResumeData) StatusCode {
	if s.step == 0 {
		s.addr = st.msg.Recipient
		return s.request(InterruptGetBalance, 1)
	}
	balance := data.(Balance).Balance
	st.stack.push(&balance)
	return statusNext
}

// stepExtCodeCopy: memory and copy charges, AccessAccount (Berlin on), then
// CopyCode into the destination region, zero-filling the tail.
func (st *ExecutionState) stepExtCodeCopy(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		addr := st.stack.pop()
		memOffset := st.stack.pop()
		codeOffset := st.stack.pop()
		length := st.stack.pop()
		s.addr = common.Uint256ToAddress(&addr)
		span, ok := st.region(&memOffset, &length)
		if !ok {
			return StatusOutOfGas
		}
		if span.size > 0 && !st.copyCost(span.size) {
			return StatusOutOfGas
		}
		s.copySpan = span
		if offset, overflow := codeOffset.Uint64WithOverflow(); !overflow && offset < maxBufferSize {
			s.codeOffset = offset
		} else {
			s.codeOffset = maxBufferSize
		}
		if st.rev >= Berlin {
			return s.request(InterruptAccessAccount, 1)
		}
		if s.copySpan.size == 0 {
			return statusNext
		}
		return s.request(InterruptCopyCode, 2)
	case 1:
		if data.(AccessAccountStatus).Status == ColdAccess {
			if !st.useGas(additionalColdAccountAccessCost) {
				return StatusOutOfGas
			}
		}
		if s.copySpan.size == 0 {
			return statusNext
		}
		return s.request(InterruptCopyCode, 2)
	default:
		code := data.(Code).Code
		if uint64(len(code)) > s.copySpan.size {
			code = code[:s.copySpan.size]
		}
		if len(code) > 0 {
			st.memory.Set(s.copySpan.offset, uint64(len(code)), code)
		}
		if tail := s.copySpan.size - uint64(len(code)); tail > 0 {
			st.memory.Set(s.copySpan.offset+uint64(len(code)), tail, make([]byte, tail))
		}
		return statusNext
	}
}

// stepTxContextOp serves every instruction that reads the transaction
// environment.
func (st *ExecutionState) stepTxContextOp(s *suspension, data ResumeData) StatusCode {
	if s.step == 0 {
		return s.request(InterruptTxContext, 1)
	}
	ctx := data.(TxContextData).Context
	var v uint256.Int
	switch s.op {
	case ORIGIN:
		v = *ctx.Origin.Uint256()
	case GASPRICE:
		v = ctx.GasPrice
	case COINBASE:
		v = *ctx.Coinbase.Uint256()
	case TIMESTAMP:
		v.SetUint64(ctx.Timestamp)
	case NUMBER:
		v.SetUint64(ctx.BlockNumber)
	case DIFFICULTY:
		v = ctx.Difficulty
	case GASLIMIT:
		v.SetUint64(ctx.GasLimit)
	case CHAINID:
		v = ctx.ChainID
	case BASEFEE:
		v = ctx.BaseFee
	}
	st.stack.push(&v)
	return statusNext
}

// stepBlockHash asks for the transaction context first; only numbers inside
// the 256 block window reach the host.
func (st *ExecutionState) stepBlockHash(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		s.value = st.stack.pop()
		return s.request(InterruptTxContext, 1)
	case 1:
		upper := data.(TxContextData).Context.BlockNumber
		var lower uint64
		if upper > params.BlockHashHistory {
			lower = upper - params.BlockHashHistory
		}
		if s.value.IsUint64() {
			if n := s.value.Uint64(); n >= lower && n < upper {
				s.blockNum = n
				return s.request(InterruptBlockHash, 2)
			}
		}
		st.stack.push(new(uint256.Int))
		return statusNext
	default:
		hash := data.(BlockHashData).Hash
		st.stack.push(hash.Uint256())
		return statusNext
	}
}

// stepLog charges for the data, snapshots topics and payload, and notifies
// the host once.
func (st *ExecutionState) stepLog(s *suspension, data ResumeData) StatusCode {
	if s.step == 0 {
		if st.msg.Static {
			return StatusStaticModeViolation
		}
		offset, size := st.stack.pop(), st.stack.pop()
		span, ok := st.region(&offset, &size)
		if !ok {
			return StatusOutOfGas
		}
		if span.size > 0 && !st.useGas(int64(params.LogDataGas)*int64(span.size)) {
			return StatusOutOfGas
		}
		numTopics := int(s.op - LOG0)
		topics := make([]common.Hash, numTopics)
		for i := 0; i < numTopics; i++ {
			topic := st.stack.pop()
			topics[i] = common.Uint256ToHash(&topic)
		}
		s.addr = st.msg.Recipient
		s.topics = topics
		s.data = st.memory.GetCopy(span.offset, span.size)
		return s.request(InterruptEmitLog, 1)
	}
	return statusNext
}

// stepSelfdestruct: access charge (Berlin on), new-account cost for funded
// destructs (Tangerine on), host notification, then frame termination.
func (st *ExecutionState) stepSelfdestruct(s *suspension, data ResumeData) StatusCode {
	switch s.step {
	case 0:
		if st.msg.Static {
			return StatusStaticModeViolation
		}
		beneficiary := st.stack.pop()
		s.beneficiary = common.Uint256ToAddress(&beneficiary)
		if st.rev >= Berlin {
			s.addr = s.beneficiary
			return s.request(InterruptAccessAccount, 1)
		}
		return st.selfdestructBeneficiaryCost(s)
	case 1:
		if data.(AccessAccountStatus).Status == ColdAccess {
			// SELFDESTRUCT's base cost carries no warm component, so a cold
			// beneficiary pays the full cold account access cost.
			if !st.useGas(int64(params.ColdAccountAccessCostEIP2929)) {
				return StatusOutOfGas
			}
		}
		return st.selfdestructBeneficiaryCost(s)
	case 2:
		if balance := data.(Balance).Balance; balance.IsZero() {
			s.addr = s.beneficiary
			return s.request(InterruptSelfdestruct, 4)
		}
		s.addr = s.beneficiary
		return s.request(InterruptAccountExists, 3)
	case 3:
		if !data.(AccountExistsStatus).Exists {
			if !st.useGas(int64(params.CallNewAccountGas)) {
				return StatusOutOfGas
			}
		}
		s.addr = s.beneficiary
		return s.request(InterruptSelfdestruct, 4)
	default:
		if st.rev < London {
			st.refund += int64(params.SelfdestructRefundGas)
		}
		return StatusSuccess
	}
}

// selfdestructBeneficiaryCost decides whether sending the balance to a
// non-existing beneficiary costs extra. Tangerine Whistle always charges it;
// later revisions only for a non-zero balance.
func (st *ExecutionState) selfdestructBeneficiaryCost(s *suspension) StatusCode {
	if st.rev >= TangerineWhistle {
		if st.rev == TangerineWhistle {
			s.addr = s.beneficiary
			return s.request(InterruptAccountExists, 3)
		}
		s.addr = st.msg.Recipient
		return s.request(InterruptGetBalance, 2)
	}
	s.addr = s.beneficiary
	return s.request(InterruptSelfdestruct, 4)
}
