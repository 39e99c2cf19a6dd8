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
)

// InterruptKind identifies the host operation a suspended execution is
// waiting on.
type InterruptKind int

const (
	// InterruptStart is an execution that has not begun yet. Resume with nil.
	InterruptStart InterruptKind = iota

	InterruptAccountExists
	InterruptGetStorage
	InterruptSetStorage
	InterruptGetBalance
	InterruptGetCodeSize
	InterruptGetCodeHash
	InterruptCopyCode
	InterruptSelfdestruct
	InterruptCall
	InterruptTxContext
	InterruptBlockHash
	InterruptEmitLog
	InterruptAccessAccount
	InterruptAccessStorage
)

var interruptKindToString = [...]string{
	InterruptStart:         "start",
	InterruptAccountExists: "account exists",
	InterruptGetStorage:    "get storage",
	InterruptSetStorage:    "set storage",
	InterruptGetBalance:    "get balance",
	InterruptGetCodeSize:   "get code size",
	InterruptGetCodeHash:   "get code hash",
	InterruptCopyCode:      "copy code",
	InterruptSelfdestruct:  "selfdestruct",
	InterruptCall:          "call",
	InterruptTxContext:     "tx context",
	InterruptBlockHash:     "block hash",
	InterruptEmitLog:       "emit log",
	InterruptAccessAccount: "access account",
	InterruptAccessStorage: "access storage",
}

func (k InterruptKind) String() string {
	if k >= 0 && int(k) < len(interruptKindToString) {
		return interruptKindToString[k]
	}
	return "unknown interrupt"
}

// ResumeData is the closed set of typed payloads an Interrupt can be resumed
// with. The payload type must match the interrupt kind.
type ResumeData interface {
	resumeData()
}

// AccountExistsStatus answers InterruptAccountExists.
type AccountExistsStatus struct{ Exists bool }

// StorageValue answers InterruptGetStorage.
type StorageValue struct{ Value common.Hash }

// StorageStatusInfo answers InterruptSetStorage.
type StorageStatusInfo struct{ Status StorageStatus }

// Balance answers InterruptGetBalance.
type Balance struct{ Balance uint256.Int }

// CodeSize answers InterruptGetCodeSize.
type CodeSize struct{ Size uint64 }

// CodeHash answers InterruptGetCodeHash.
type CodeHash struct{ Hash common.Hash }

// Code answers InterruptCopyCode with at most the requested number of bytes.
type Code struct{ Code []byte }

// CallOutput answers InterruptCall with the nested frame's output.
type CallOutput struct{ Output *Output }

// TxContextData answers InterruptTxContext.
type TxContextData struct{ Context TxContext }

// BlockHashData answers InterruptBlockHash.
type BlockHashData struct{ Hash common.Hash }

// AccessAccountStatus answers InterruptAccessAccount.
type AccessAccountStatus struct{ Status AccessStatus }

// AccessStorageStatus answers InterruptAccessStorage.
type AccessStorageStatus struct{ Status AccessStatus }

func (AccountExistsStatus) resumeData() {}
func (StorageValue) resumeData()        {}
func (StorageStatusInfo) resumeData()   {}
func (Balance) resumeData()             {}
func (CodeSize) resumeData()            {}
func (CodeHash) resumeData()            {}
func (Code) resumeData()                {}
func (CallOutput) resumeData()          {}
func (TxContextData) resumeData()       {}
func (BlockHashData) resumeData()       {}
func (AccessAccountStatus) resumeData() {}
func (AccessStorageStatus) resumeData() {}

// resumeDataMatches validates the payload type against the pending kind.
// InterruptSelfdestruct and InterruptEmitLog carry no data back.
func resumeDataMatches(kind InterruptKind, data ResumeData) bool {
	switch kind {
	case InterruptStart, InterruptSelfdestruct, InterruptEmitLog:
		return data == nil
	case InterruptAccountExists:
		_, ok := data.(AccountExistsStatus)
		return ok
	case InterruptGetStorage:
		_, ok := data.(StorageValue)
		return ok
	case InterruptSetStorage:
		_, ok := data.(StorageStatusInfo)
		return ok
	case InterruptGetBalance:
		_, ok := data.(Balance)
		return ok
	case InterruptGetCodeSize:
		_, ok := data.(CodeSize)
		return ok
	case InterruptGetCodeHash:
		_, ok := data.(CodeHash)
		return ok
	case InterruptCopyCode:
		_, ok := data.(Code)
		return ok
	case InterruptCall:
		_, ok := data.(CallOutput)
		return ok
	case InterruptTxContext:
		_, ok := data.(TxContextData)
		return ok
	case InterruptBlockHash:
		_, ok := data.(BlockHashData)
		return ok
	case InterruptAccessAccount:
		_, ok := data.(AccessAccountStatus)
		return ok
	case InterruptAccessStorage:
		_, ok := data.(AccessStorageStatus)
		return ok
	}
	return false
}

// suspension is the bookkeeping of one host-dependent instruction in flight:
// which instruction, which phase it is in, the pending request payload and
// the scratch carried between phases.
type suspension struct {
	op   OpCode
	step int
	kind InterruptKind

	// correction is the block static-gas remainder recorded for this
	// instruction, zero for instructions that do not observe gas.
	correction int64

	addr        common.Address // target account of the pending request
	beneficiary common.Address // SELFDESTRUCT beneficiary
	slot        common.Hash    // storage key
	value       uint256.Int    // proposed storage value, call value or popped scratch word
	cost        int64          // accumulated extra constant cost
	blockNum    uint64         // resolved BLOCKHASH argument

	topics []common.Hash // EmitLog topics
	data   []byte        // EmitLog payload

	copySpan   memSpan // EXTCODECOPY destination
	codeOffset uint64  // EXTCODECOPY source offset

	// Call operands held raw until the access phase has run, so memory
	// charges happen in consensus order.
	gasReq  uint256.Int
	inOff   uint256.Int
	inSize  uint256.Int
	outOff  uint256.Int
	outSize uint256.Int

	callMsg  *Message // sub-call under construction
	outSpan  memSpan  // call output destination
	hasValue bool
}

func (s *suspension) request(kind InterruptKind, step int) StatusCode {
	s.kind = kind
	s.step = step
	return statusSuspended
}

// Interrupt is a suspended execution waiting for one host answer. It owns the
// underlying ExecutionState exclusively: resuming consumes the Interrupt and
// either finishes the execution, or hands ownership to the next Interrupt.
// Discarding an Interrupt abandons the execution; nothing is left running.
type Interrupt struct {
	kind     InterruptKind
	state    *ExecutionState
	consumed bool
}

func newInterrupt(st *ExecutionState) *Interrupt {
	kind := InterruptStart
	if st.susp != nil {
		kind = st.susp.kind
	}
	return &Interrupt{kind: kind, state: st}
}

// Kind returns what the execution is waiting on.
func (it *Interrupt) Kind() InterruptKind {
	return it.kind
}

// Account returns the account the pending request addresses: the queried
// account for balance/code/access requests, the beneficiary for selfdestruct
// and the executing contract for storage and log requests.
func (it *Interrupt) Account() common.Address {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.addr
	}
	return common.Address{}
}

// StorageKey returns the slot of a pending storage request.
func (it *Interrupt) StorageKey() common.Hash {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.slot
	}
	return common.Hash{}
}

// StorageValue returns the proposed value of a pending SetStorage request.
func (it *Interrupt) StorageValue() common.Hash {
	if it.state != nil && it.state.susp != nil {
		return common.Uint256ToHash(&it.state.susp.value)
	}
	return common.Hash{}
}

// BlockNumber returns the argument of a pending GetBlockHash request. It is
// always within the BLOCKHASH history window.
func (it *Interrupt) BlockNumber() uint64 {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.blockNum
	}
	return 0
}

// CodeRange returns the source offset and maximum size of a pending CopyCode
// request.
func (it *Interrupt) CodeRange() (offset, maxSize uint64) {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.codeOffset, it.state.susp.copySpan.size
	}
	return 0, 0
}

// CallMessage returns the sub-call of a pending Call request. The host must
// not mutate it.
func (it *Interrupt) CallMessage() *Message {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.callMsg
	}
	return nil
}

// Log returns the payload of a pending EmitLog request.
func (it *Interrupt) Log() (topics []common.Hash, data []byte) {
	if it.state != nil && it.state.susp != nil {
		return it.state.susp.topics, it.state.susp.data
	}
	return nil, nil
}

// Resume hands the host's answer to the suspended execution and drives it
// until it terminates or suspends again. Exactly one of out and next is
// non-nil on success. A second Resume returns ErrInterruptConsumed; a payload
// of the wrong type returns ErrInvalidResume and leaves the Interrupt
// resumable.
func (it *Interrupt) Resume(data ResumeData) (out *Output, next *Interrupt, err error) {
	if it.consumed || it.state == nil {
		return nil, nil, ErrInterruptConsumed
	}
	if !resumeDataMatches(it.kind, data) {
		return nil, nil, ErrInvalidResume
	}
	it.consumed = true
	st := it.state
	it.state = nil

	if st.susp == nil {
		// Start interrupt: nothing to apply, enter the loop.
		st.traceStart()
		out, next = st.run()
		return out, next, nil
	}

	switch status := st.resumeStep(data); status {
	case statusSuspended:
		return nil, newInterrupt(st), nil
	case statusNext:
		st.pc++
	case statusJump:
		// pc set by the instruction
	case StatusSuccess:
		return st.success(), nil, nil
	default:
		return st.failure(status), nil, nil
	}
	out, next = st.run()
	return out, next, nil
}

// resumeStep feeds data into the pending instruction's phase machine. A nil
// payload with a fresh suspension starts the machine.
func (st *ExecutionState) resumeStep(data ResumeData) StatusCode {
	s := st.susp
	var status StatusCode
	switch s.op {
	case SLOAD:
		status = st.stepSload(s, data)
	case SSTORE:
		status = st.stepSstore(s, data)
	case BALANCE, EXTCODESIZE, EXTCODEHASH:
		status = st.stepAccountQuery(s, data)
	case SELFBALANCE:
		status = st.stepSelfBalance(s, data)
	case EXTCODECOPY:
		status = st.stepExtCodeCopy(s, data)
	case ORIGIN, GASPRICE, COINBASE, TIMESTAMP, NUMBER, DIFFICULTY, GASLIMIT, CHAINID, BASEFEE:
		status = st.stepTxContextOp(s, data)
	case BLOCKHASH:
		status = st.stepBlockHash(s, data)
	case LOG0, LOG1, LOG2, LOG3, LOG4:
		status = st.stepLog(s, data)
	case SELFDESTRUCT:
		status = st.stepSelfdestruct(s, data)
	case CREATE, CREATE2:
		status = st.stepCreate(s, data)
	case CALL, CALLCODE, DELEGATECALL, STATICCALL:
		status = st.stepCall(s, data)
	default:
		status = StatusInternalError
	}
	if status != statusSuspended {
		st.susp = nil
	}
	return status
}
