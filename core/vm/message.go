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

// CallKind is the kind of a call-like message.
type CallKind int

const (
	// Call is a plain message call (also used for zero-depth calls from a
	// transaction origin).
	Call CallKind = iota

	// DelegateCall runs foreign code against the caller's own storage,
	// keeping the original sender and value.
	DelegateCall

	// CallCode runs foreign code against the caller's own storage with a
	// fresh sender/value pair.
	CallCode

	// StaticCall is a plain call with all state modification forbidden.
	StaticCall

	// Create deploys a contract at an address derived from sender and nonce.
	Create

	// Create2 deploys a contract at an address derived from sender, salt and
	// initcode hash.
	Create2
)

var callKindToString = [...]string{
	Call:         "call",
	DelegateCall: "delegatecall",
	CallCode:     "callcode",
	StaticCall:   "staticcall",
	Create:       "create",
	Create2:      "create2",
}

func (k CallKind) String() string {
	if k >= 0 && int(k) < len(callKindToString) {
		return callKindToString[k]
	}
	return "unknown call kind"
}

// Message describes one EVM call frame, including zero-depth calls from a
// transaction origin.
type Message struct {
	// Kind of the call. Zero-depth calls use Call.
	Kind CallKind

	// Static forbids any state modification, transitively.
	Static bool

	// Depth is the call depth, zero for the outermost frame.
	Depth int

	// Gas available for execution.
	Gas int64

	// Recipient is the account whose storage, balance and address the code
	// observes. For DelegateCall and CallCode this stays the calling frame's
	// account.
	Recipient common.Address

	// CodeAddress is the account the executed code was loaded from. Equal to
	// Recipient except for delegate-style calls.
	CodeAddress common.Address

	// Sender of the message.
	Sender common.Address

	// Input data of the call, or initcode metadata input for creates.
	Input []byte

	// Value transferred with the message.
	Value uint256.Int

	// Salt for Create2, unused otherwise.
	Salt common.Hash
}

// Output is the result of one EVM call frame.
type Output struct {
	// Status the execution terminated with.
	Status StatusCode

	// GasLeft is the unconsumed gas. Zero for all statuses except
	// StatusSuccess and StatusRevert.
	GasLeft int64

	// GasRefund is the accumulated refund counter, including refunds
	// surfaced by nested frames. Zero unless Status is StatusSuccess; the
	// embedder applies the end-of-transaction refund cap.
	GasRefund int64

	// Data is the returned or reverted output.
	Data []byte

	// CreateAddress is the address of the deployed contract for a
	// successful create frame, nil otherwise.
	CreateAddress *common.Address
}
