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

// Package params holds the protocol gas schedule shared by the interpreter.
package params

const (
	StackLimit      uint64 = 1024 // Maximum size of VM stack allowed.
	CallCreateDepth uint64 = 1024 // Maximum depth of call/create stack.

	MemoryGas    uint64 = 3   // Times the address of the (highest referenced byte in memory + 1). NOTE: referencing happens on read, write and in instructions such as RETURN and CALL.
	QuadCoeffDiv uint64 = 512 // Divisor for the quadratic particle of the memory cost equation.

	Keccak256WordGas uint64 = 6 // Once per word of the KECCAK256 operation's data.
	CopyGas          uint64 = 3 // Once per word of copied data, rounded up.

	LogGas      uint64 = 375 // Per LOG* operation.
	LogTopicGas uint64 = 375 // Multiplied by the * of the LOG*, per LOG transaction. e.g. LOG0 incurs 0 * c_txLogTopicGas, LOG4 incurs 4 * c_txLogTopicGas.
	LogDataGas  uint64 = 8   // Per byte in a LOG* operation's data.

	ExpByteFrontier uint64 = 10 // Times ceil(log256(exponent)) for the EXP instruction, until Spurious Dragon.
	ExpByteEIP158   uint64 = 50 // Times ceil(log256(exponent)) for the EXP instruction, from Spurious Dragon on.

	CreateGas   uint64 = 32000 // Once per CREATE operation & contract-creation transaction.
	CallStipend uint64 = 2300  // Free gas given to the callee at the beginning of a value-bearing CALL.

	CallValueTransferGas uint64 = 9000  // Paid for CALL when the value transfer is non-zero.
	CallNewAccountGas    uint64 = 25000 // Paid for CALL when the destination address didn't exist prior.

	SstoreSetGas           uint64 = 20000 // Once per SSTORE operation when the zeroness changes from zero.
	SstoreResetGas         uint64 = 5000  // Once per SSTORE operation when the zeroness doesn't change.
	SstoreSentryGasEIP2200 uint64 = 2300  // Minimum gas required to be present for an SSTORE call, not consumed.

	SstoreRefundGas                   uint64 = 15000 // Once per SSTORE operation that clears a slot, until London.
	SstoreClearsScheduleRefundEIP3529 uint64 = 4800  // Once per SSTORE operation that clears a slot, from London on.
	SelfdestructRefundGas             uint64 = 24000 // Refunded following a selfdestruct operation, until London.

	ColdAccountAccessCostEIP2929 uint64 = 2600 // COLD_ACCOUNT_ACCESS_COST
	ColdSloadCostEIP2929         uint64 = 2100 // COLD_SLOAD_COST
	WarmStorageReadCostEIP2929   uint64 = 100  // WARM_STORAGE_READ_COST

	BlockHashHistory uint64 = 256 // Range of recent blocks addressable by BLOCKHASH.
)
