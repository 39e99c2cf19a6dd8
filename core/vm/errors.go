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

import "errors"

// StatusCode is the way an execution terminated. It is a value, not an error:
// every status other than StatusSuccess and StatusRevert consumes all gas, but
// none of them is exceptional from the embedder's point of view.
type StatusCode int

const (
	// StatusSuccess means execution finished with success.
	StatusSuccess StatusCode = iota

	// StatusRevert means execution terminated with the REVERT opcode. The
	// remaining gas is kept and output data may be present.
	StatusRevert

	// StatusOutOfGas means the execution has run out of gas.
	StatusOutOfGas

	// StatusInvalidInstruction means the designated INVALID instruction was hit.
	StatusInvalidInstruction

	// StatusUndefinedInstruction means an instruction undefined for the
	// active revision was encountered.
	StatusUndefinedInstruction

	// StatusBadJumpDestination means a jump resolved to an offset that is not
	// a reachable JUMPDEST.
	StatusBadJumpDestination

	// StatusStackOverflow means the execution tried to grow the stack beyond
	// 1024 items.
	StatusStackOverflow

	// StatusStackUnderflow means an instruction required more stack items
	// than present.
	StatusStackUnderflow

	// StatusInvalidMemoryAccess means a read outside valid buffer bounds,
	// e.g. RETURNDATACOPY past the return buffer.
	StatusInvalidMemoryAccess

	// StatusStaticModeViolation means a state-modifying instruction ran
	// inside a static call.
	StatusStaticModeViolation

	// StatusCallDepthExceeded means the call depth limit was exceeded.
	// Reported by hosts; the interpreter itself silently fails deep calls.
	StatusCallDepthExceeded

	// StatusPrecompileFailure means a call to a precompiled contract failed.
	// Reported by hosts executing precompiles on the interpreter's behalf.
	StatusPrecompileFailure

	// StatusInternalError is a generic internal failure of the interpreter
	// or the host.
	StatusInternalError
)

// Internal flow results of a single instruction. Negative so they can share
// the StatusCode domain without ever escaping to the embedder.
const (
	statusNext      StatusCode = -1 - iota // advance to the next instruction
	statusJump                             // pc was set by the instruction
	statusSuspended                        // a host interrupt is pending
)

var statusToString = [...]string{
	StatusSuccess:              "success",
	StatusRevert:               "revert",
	StatusOutOfGas:             "out of gas",
	StatusInvalidInstruction:   "invalid instruction",
	StatusUndefinedInstruction: "undefined instruction",
	StatusBadJumpDestination:   "bad jump destination",
	StatusStackOverflow:        "stack overflow",
	StatusStackUnderflow:       "stack underflow",
	StatusInvalidMemoryAccess:  "invalid memory access",
	StatusStaticModeViolation:  "static mode violation",
	StatusCallDepthExceeded:    "call depth exceeded",
	StatusPrecompileFailure:    "precompile failure",
	StatusInternalError:        "internal error",
}

func (s StatusCode) String() string {
	if s >= 0 && int(s) < len(statusToString) {
		return statusToString[s]
	}
	return "unknown status"
}

// Errors returned by Interrupt.Resume for violations of the resume contract.
// These never describe EVM-level failures.
var (
	// ErrInterruptConsumed is returned when an Interrupt is resumed twice.
	ErrInterruptConsumed = errors.New("interrupt already consumed")

	// ErrInvalidResume is returned when the resume payload type does not
	// match the pending interrupt kind.
	ErrInvalidResume = errors.New("resume data does not match interrupt")
)
