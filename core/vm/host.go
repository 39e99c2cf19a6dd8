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

// StorageStatus classifies the effect of a storage write, as reported by the
// host. The interpreter derives SSTORE gas and refunds from it.
type StorageStatus int

const (
	// StorageUnchanged means the new value equals the current one.
	StorageUnchanged StorageStatus = iota

	// StorageModified means a fresh nonzero slot got a different nonzero value.
	StorageModified

	// StorageModifiedAgain means a slot already dirtied in this transaction
	// was changed again.
	StorageModifiedAgain

	// StorageAdded means a zero slot got a nonzero value.
	StorageAdded

	// StorageDeleted means a nonzero slot was set to zero.
	StorageDeleted
)

// AccessStatus reports whether an account or storage slot was already in the
// per-transaction access set (EIP-2929).
type AccessStatus int

const (
	ColdAccess AccessStatus = iota
	WarmAccess
)

// TxContext carries the transaction and block environment the ORIGIN,
// GASPRICE, COINBASE, TIMESTAMP, NUMBER, DIFFICULTY, GASLIMIT, CHAINID and
// BASEFEE instructions observe. Stable for the duration of one execution.
type TxContext struct {
	GasPrice    uint256.Int
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber uint64
	Timestamp   uint64
	GasLimit    uint64
	Difficulty  uint256.Int
	ChainID     uint256.Int
	BaseFee     uint256.Int
}

// Host supplies everything the interpreter cannot know by itself: account
// state, transaction context and nested execution. The driver translates
// interrupts into Host calls; embedders that pump interrupts by hand never
// need to implement it.
//
// The interpreter owns gas accounting and static-mode enforcement; the host
// owns all state and its journaling.
type Host interface {
	// AccountExists reports whether the account is alive (for new-account
	// call costs; dead accounts per EIP-161 count as absent).
	AccountExists(addr common.Address) bool

	// GetStorage returns the current value of the given storage slot.
	GetStorage(addr common.Address, key common.Hash) common.Hash

	// SetStorage writes a storage slot and classifies the transition.
	SetStorage(addr common.Address, key, value common.Hash) StorageStatus

	// GetBalance returns the balance of the given account.
	GetBalance(addr common.Address) *uint256.Int

	// GetCodeSize returns the size of the code stored at addr.
	GetCodeSize(addr common.Address) uint64

	// GetCodeHash returns the code hash of addr, or the zero hash for
	// non-existent accounts.
	GetCodeHash(addr common.Address) common.Hash

	// CopyCode copies at most len(buf) bytes of addr's code starting at
	// offset into buf and returns the number of bytes copied.
	CopyCode(addr common.Address, offset uint64, buf []byte) uint64

	// Selfdestruct marks addr for destruction, crediting its balance to the
	// beneficiary.
	Selfdestruct(addr, beneficiary common.Address)

	// Call executes a nested message (including creates) and returns its
	// output. The host resolves code, precompiles and value transfer.
	Call(msg *Message) *Output

	// TxContext returns the transaction environment.
	TxContext() TxContext

	// GetBlockHash returns the hash of the given block number. Only numbers
	// within the BLOCKHASH history window are requested.
	GetBlockHash(number uint64) common.Hash

	// EmitLog records a log entry for the current execution.
	EmitLog(addr common.Address, topics []common.Hash, data []byte)

	// AccessAccount adds addr to the access set and reports whether it was
	// cold. Only called from Berlin on.
	AccessAccount(addr common.Address) AccessStatus

	// AccessStorage adds the storage slot to the access set and reports
	// whether it was cold. Only called from Berlin on.
	AccessStorage(addr common.Address, key common.Hash) AccessStatus
}
