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

package vm_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/evmint/evmint/common"
	"github.com/evmint/evmint/core/vm"
	"github.com/evmint/evmint/core/vm/program"
)

var (
	selfAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	destAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// expectSuspend resumes it and requires another interrupt of the given kind.
func expectSuspend(t *testing.T, it *vm.Interrupt, data vm.ResumeData, kind vm.InterruptKind) *vm.Interrupt {
	t.Helper()
	out, next, err := it.Resume(data)
	require.NoError(t, err)
	require.Nil(t, out)
	require.NotNil(t, next)
	require.Equal(t, kind, next.Kind())
	return next
}

// expectDone resumes it and requires the execution to terminate.
func expectDone(t *testing.T, it *vm.Interrupt, data vm.ResumeData) *vm.Output {
	t.Helper()
	out, next, err := it.Resume(data)
	require.NoError(t, err)
	require.Nil(t, next)
	require.NotNil(t, out)
	return out
}

func TestSloadPreBerlin(t *testing.T) {
	code := program.New().Push(42).Op(vm.SLOAD).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	msg := &vm.Message{Gas: 2000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
	require.Equal(t, vm.InterruptStart, it.Kind())

	it = expectSuspend(t, it, nil, vm.InterruptGetStorage)
	require.Equal(t, selfAddr, it.Account())
	require.Equal(t, common.Hash{31: 42}, it.StorageKey())

	value := common.Hash{0: 0xde, 31: 0xad}
	out := expectDone(t, it, vm.StorageValue{Value: value})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, value[:], out.Data)
	require.Equal(t, int64(1182), out.GasLeft)
}

func TestSloadBerlinAccessCharge(t *testing.T) {
	code := program.New().Push(42).Op(vm.SLOAD).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()

	run := func(t *testing.T, access vm.AccessStatus) *vm.Output {
		msg := &vm.Message{Gas: 3000, Recipient: selfAddr}
		it := vm.Analyze(code).ExecuteResumable(msg, vm.London, nil)
		it = expectSuspend(t, it, nil, vm.InterruptAccessStorage)
		require.Equal(t, selfAddr, it.Account())
		require.Equal(t, common.Hash{31: 42}, it.StorageKey())
		it = expectSuspend(t, it, vm.AccessStorageStatus{Status: access}, vm.InterruptGetStorage)
		return expectDone(t, it, vm.StorageValue{})
	}

	t.Run("cold", func(t *testing.T) {
		out := run(t, vm.ColdAccess)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(3000-2118), out.GasLeft)
	})
	t.Run("warm", func(t *testing.T) {
		out := run(t, vm.WarmAccess)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(3000-118), out.GasLeft)
	})
}

func TestResumeConsumedInterrupt(t *testing.T) {
	code := program.New().Push(0).Op(vm.SLOAD).Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2000}, vm.Istanbul, nil)
	next := expectSuspend(t, it, nil, vm.InterruptGetStorage)

	_, _, err := it.Resume(nil)
	require.ErrorIs(t, err, vm.ErrInterruptConsumed)

	expectDone(t, next, vm.StorageValue{})
	_, _, err = next.Resume(vm.StorageValue{})
	require.ErrorIs(t, err, vm.ErrInterruptConsumed)
}

func TestResumeWrongPayload(t *testing.T) {
	code := program.New().Push(0).Op(vm.SLOAD).Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2000}, vm.Istanbul, nil)

	// A start interrupt takes no payload.
	_, _, err := it.Resume(vm.StorageValue{})
	require.ErrorIs(t, err, vm.ErrInvalidResume)

	it = expectSuspend(t, it, nil, vm.InterruptGetStorage)
	_, _, err = it.Resume(vm.Balance{})
	require.ErrorIs(t, err, vm.ErrInvalidResume)

	// A rejected payload leaves the interrupt resumable.
	out := expectDone(t, it, vm.StorageValue{})
	require.Equal(t, vm.StatusSuccess, out.Status)
}

func TestSstoreCostMatrix(t *testing.T) {
	code := program.New().Sstore(0, 1).Bytes()
	const gas = 30000

	tests := []struct {
		name   string
		rev    vm.Revision
		access vm.AccessStatus // consulted from Berlin on
		status vm.StorageStatus
		cost   int64
		refund int64
	}{
		{"frontier added", vm.Frontier, vm.WarmAccess, vm.StorageAdded, 20000, 0},
		{"frontier deleted", vm.Frontier, vm.WarmAccess, vm.StorageDeleted, 5000, 15000},
		{"frontier unchanged", vm.Frontier, vm.WarmAccess, vm.StorageUnchanged, 5000, 0},
		{"constantinople unchanged", vm.Constantinople, vm.WarmAccess, vm.StorageUnchanged, 200, 0},
		{"petersburg unchanged", vm.Petersburg, vm.WarmAccess, vm.StorageUnchanged, 5000, 0},
		{"istanbul unchanged", vm.Istanbul, vm.WarmAccess, vm.StorageUnchanged, 800, 0},
		{"istanbul modified", vm.Istanbul, vm.WarmAccess, vm.StorageModified, 5000, 0},
		{"berlin warm unchanged", vm.Berlin, vm.WarmAccess, vm.StorageUnchanged, 100, 0},
		{"berlin cold unchanged", vm.Berlin, vm.ColdAccess, vm.StorageUnchanged, 2200, 0},
		{"berlin warm modified", vm.Berlin, vm.WarmAccess, vm.StorageModified, 2900, 0},
		{"berlin cold modified", vm.Berlin, vm.ColdAccess, vm.StorageModified, 5000, 0},
		{"berlin warm deleted", vm.Berlin, vm.WarmAccess, vm.StorageDeleted, 2900, 15000},
		{"london warm deleted", vm.London, vm.WarmAccess, vm.StorageDeleted, 2900, 4800},
		{"london cold added", vm.London, vm.ColdAccess, vm.StorageAdded, 22100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &vm.Message{Gas: gas, Recipient: selfAddr}
			it := vm.Analyze(code).ExecuteResumable(msg, tt.rev, nil)
			if tt.rev >= vm.Berlin {
				it = expectSuspend(t, it, nil, vm.InterruptAccessStorage)
				it = expectSuspend(t, it, vm.AccessStorageStatus{Status: tt.access}, vm.InterruptSetStorage)
			} else {
				it = expectSuspend(t, it, nil, vm.InterruptSetStorage)
			}
			require.Equal(t, selfAddr, it.Account())
			require.Equal(t, common.Hash{}, it.StorageKey())
			require.Equal(t, common.Hash{31: 1}, it.StorageValue())

			out := expectDone(t, it, vm.StorageStatusInfo{Status: tt.status})
			require.Equal(t, vm.StatusSuccess, out.Status)
			require.Equal(t, int64(gas-6-tt.cost), out.GasLeft)
			require.Equal(t, tt.refund, out.GasRefund)
		})
	}
}

func TestSstoreSentry(t *testing.T) {
	code := program.New().Sstore(0, 1).Bytes()

	// EIP-2200: at most 2300 gas left at the SSTORE is an out-of-gas, before
	// anything is popped or requested.
	t.Run("at sentry", func(t *testing.T) {
		out := expectDone(t, vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2306}, vm.Istanbul, nil), nil)
		require.Equal(t, vm.StatusOutOfGas, out.Status)
		require.Equal(t, int64(0), out.GasLeft)
	})
	t.Run("above sentry", func(t *testing.T) {
		it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2307}, vm.Istanbul, nil)
		expectSuspend(t, it, nil, vm.InterruptSetStorage)
	})
	t.Run("no sentry before istanbul", func(t *testing.T) {
		it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2306}, vm.Byzantium, nil)
		expectSuspend(t, it, nil, vm.InterruptSetStorage)
	})
}

func TestSstoreInStaticMode(t *testing.T) {
	code := program.New().Sstore(0, 1).Bytes()
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 30000, Static: true}, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusStaticModeViolation, out.Status)
	require.Equal(t, int64(0), out.GasLeft)
}

func TestAccountQueries(t *testing.T) {
	tests := []struct {
		name string
		op   vm.OpCode
		kind vm.InterruptKind
		data vm.ResumeData
		want *uint256.Int
	}{
		{"balance", vm.BALANCE, vm.InterruptGetBalance, vm.Balance{Balance: *uint256.NewInt(1234)}, uint256.NewInt(1234)},
		{"extcodesize", vm.EXTCODESIZE, vm.InterruptGetCodeSize, vm.CodeSize{Size: 99}, uint256.NewInt(99)},
		{"extcodehash", vm.EXTCODEHASH, vm.InterruptGetCodeHash, vm.CodeHash{Hash: common.Hash{31: 0x7f}}, uint256.NewInt(0x7f)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := program.New().Push(destAddr).Op(tt.op).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
			it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 5000}, vm.Istanbul, nil)
			it = expectSuspend(t, it, nil, tt.kind)
			require.Equal(t, destAddr, it.Account())
			out := expectDone(t, it, tt.data)
			require.Equal(t, vm.StatusSuccess, out.Status)
			require.Equal(t, tt.want, new(uint256.Int).SetBytes(out.Data))
		})
	}
}

func TestAccountQueryBerlinCold(t *testing.T) {
	code := program.New().Push(destAddr).Op(vm.BALANCE).Bytes()
	msg := &vm.Message{Gas: 5000}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.London, nil)
	it = expectSuspend(t, it, nil, vm.InterruptAccessAccount)
	require.Equal(t, destAddr, it.Account())
	it = expectSuspend(t, it, vm.AccessAccountStatus{Status: vm.ColdAccess}, vm.InterruptGetBalance)
	out := expectDone(t, it, vm.Balance{})
	require.Equal(t, vm.StatusSuccess, out.Status)
	// PUSH20 3 + BALANCE warm 100 + cold surcharge 2500.
	require.Equal(t, int64(5000-2603), out.GasLeft)
}

func TestSelfBalance(t *testing.T) {
	code := program.New().Op(vm.SELFBALANCE).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	msg := &vm.Message{Gas: 1000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
	// The executing account is always warm; no access interrupt even on Berlin.
	it = expectSuspend(t, it, nil, vm.InterruptGetBalance)
	require.Equal(t, selfAddr, it.Account())
	out := expectDone(t, it, vm.Balance{Balance: *uint256.NewInt(77)})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, uint256.NewInt(77), new(uint256.Int).SetBytes(out.Data))
}

func TestExtCodeCopy(t *testing.T) {
	// EXTCODECOPY pops address, memOffset, codeOffset, length.
	code := program.New().Push(8).Push(2).Push(0).Push(destAddr).Op(vm.EXTCODECOPY).Return(0, 8).Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 5000}, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptCopyCode)
	require.Equal(t, destAddr, it.Account())
	offset, maxSize := it.CodeRange()
	require.Equal(t, uint64(2), offset)
	require.Equal(t, uint64(8), maxSize)

	// Host has only 3 bytes left from the offset; the tail is zero filled.
	out := expectDone(t, it, vm.Code{Code: []byte{1, 2, 3}})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, out.Data)
}

func TestTxContextInstructions(t *testing.T) {
	code := program.New().Op(vm.NUMBER, vm.TIMESTAMP, vm.ADD).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 1000}, vm.Istanbul, nil)
	ctx := vm.TxContext{BlockNumber: 5, Timestamp: 7}

	// Every context instruction issues its own request.
	it = expectSuspend(t, it, nil, vm.InterruptTxContext)
	it = expectSuspend(t, it, vm.TxContextData{Context: ctx}, vm.InterruptTxContext)
	out := expectDone(t, it, vm.TxContextData{Context: ctx})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, uint256.NewInt(12), new(uint256.Int).SetBytes(out.Data))
}

func TestBlockhashWindow(t *testing.T) {
	makeIt := func(number int) *vm.Interrupt {
		code := program.New().Push(number).Op(vm.BLOCKHASH).Push(0).Op(vm.MSTORE).Return(0, 32).Bytes()
		return vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 1000}, vm.Istanbul, nil)
	}
	ctx := vm.TxContextData{Context: vm.TxContext{BlockNumber: 300}}

	t.Run("in window", func(t *testing.T) {
		it := expectSuspend(t, makeIt(100), nil, vm.InterruptTxContext)
		it = expectSuspend(t, it, ctx, vm.InterruptBlockHash)
		require.Equal(t, uint64(100), it.BlockNumber())
		hash := common.Hash{0: 0xbb}
		out := expectDone(t, it, vm.BlockHashData{Hash: hash})
		require.Equal(t, hash[:], out.Data)
	})
	t.Run("future block", func(t *testing.T) {
		it := expectSuspend(t, makeIt(400), nil, vm.InterruptTxContext)
		out := expectDone(t, it, ctx)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, make([]byte, 32), out.Data)
	})
	t.Run("older than 256 blocks", func(t *testing.T) {
		it := expectSuspend(t, makeIt(10), nil, vm.InterruptTxContext)
		out := expectDone(t, it, ctx)
		require.Equal(t, make([]byte, 32), out.Data)
	})
}

func TestLogEmission(t *testing.T) {
	code := program.New().
		Mstore([]byte("abc"), 0).
		Push(2).Push(1).Push(3).Push(0).Op(vm.LOG2).
		Bytes()
	msg := &vm.Message{Gas: 2000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptEmitLog)
	require.Equal(t, selfAddr, it.Account())
	topics, data := it.Log()
	require.Equal(t, []common.Hash{{31: 1}, {31: 2}}, topics)
	require.Equal(t, []byte("abc"), data)

	out := expectDone(t, it, nil)
	require.Equal(t, vm.StatusSuccess, out.Status)
}

func TestLogInStaticMode(t *testing.T) {
	code := program.New().Push(0).Push(0).Op(vm.LOG0).Bytes()
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 2000, Static: true}, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusStaticModeViolation, out.Status)
}

func TestCallPlain(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(5000), destAddr, 0, 0, 0, 0, 0).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).
		Bytes()
	msg := &vm.Message{Gas: 10000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)

	// No value, post-Spurious: the call goes straight to the host.
	it = expectSuspend(t, it, nil, vm.InterruptCall)
	sub := it.CallMessage()
	require.Equal(t, vm.Call, sub.Kind)
	require.Equal(t, destAddr, sub.Recipient)
	require.Equal(t, destAddr, sub.CodeAddress)
	require.Equal(t, selfAddr, sub.Sender)
	require.Equal(t, 1, sub.Depth)
	require.True(t, sub.Value.IsZero())
	require.Equal(t, int64(5000), sub.Gas)

	out := expectDone(t, it, vm.CallOutput{Output: &vm.Output{Status: vm.StatusSuccess, GasLeft: 4000}})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, uint256.NewInt(1), new(uint256.Int).SetBytes(out.Data))
	require.Equal(t, int64(8264), out.GasLeft)
}

func TestCallWithValue(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(100000), destAddr, 1, 0, 0, 0, 32).
		Bytes()
	msg := &vm.Message{Gas: 50000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.London, nil)

	it = expectSuspend(t, it, nil, vm.InterruptAccessAccount)
	require.Equal(t, destAddr, it.Account())
	it = expectSuspend(t, it, vm.AccessAccountStatus{Status: vm.WarmAccess}, vm.InterruptAccountExists)
	require.Equal(t, destAddr, it.Account())
	it = expectSuspend(t, it, vm.AccountExistsStatus{Exists: true}, vm.InterruptGetBalance)
	require.Equal(t, selfAddr, it.Account())
	it = expectSuspend(t, it, vm.Balance{Balance: *uint256.NewInt(10)}, vm.InterruptCall)

	sub := it.CallMessage()
	require.Equal(t, uint256.NewInt(1), &sub.Value)
	// Requested 100000, capped by the 63/64 rule, plus the 2300 stipend.
	require.Equal(t, int64(42538), sub.Gas)

	out := expectDone(t, it, vm.CallOutput{Output: &vm.Output{
		Status:    vm.StatusSuccess,
		GasLeft:   42438,
		GasRefund: 7,
		Data:      []byte("ok"),
	}})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, int64(43076), out.GasLeft)
	require.Equal(t, int64(7), out.GasRefund)
}

func TestCallInsufficientBalance(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(5000), destAddr, 9, 0, 0, 0, 0).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).
		Bytes()
	msg := &vm.Message{Gas: 50000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptAccountExists)
	it = expectSuspend(t, it, vm.AccountExistsStatus{Exists: true}, vm.InterruptGetBalance)

	// Balance below the transferred value: the call is skipped, zero stays.
	out := expectDone(t, it, vm.Balance{Balance: *uint256.NewInt(3)})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.True(t, new(uint256.Int).SetBytes(out.Data).IsZero())
}

func TestDelegateCallKeepsSenderAndValue(t *testing.T) {
	origin := common.HexToAddress("0x3333333333333333333333333333333333333333")
	code := program.New().
		DelegateCall(uint256.NewInt(1000), destAddr, 0, 0, 0, 0).
		Bytes()
	msg := &vm.Message{Gas: 10000, Recipient: selfAddr, Sender: origin, Value: *uint256.NewInt(99)}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)

	it = expectSuspend(t, it, nil, vm.InterruptCall)
	sub := it.CallMessage()
	require.Equal(t, vm.DelegateCall, sub.Kind)
	require.Equal(t, selfAddr, sub.Recipient)
	require.Equal(t, destAddr, sub.CodeAddress)
	require.Equal(t, origin, sub.Sender)
	require.Equal(t, uint256.NewInt(99), &sub.Value)

	out := expectDone(t, it, vm.CallOutput{Output: &vm.Output{Status: vm.StatusSuccess}})
	require.Equal(t, vm.StatusSuccess, out.Status)
}

func TestStaticCallMessage(t *testing.T) {
	code := program.New().
		StaticCall(uint256.NewInt(1000), destAddr, 0, 0, 0, 0).
		Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 10000, Recipient: selfAddr}, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptCall)
	sub := it.CallMessage()
	require.Equal(t, vm.StaticCall, sub.Kind)
	require.True(t, sub.Static)
	require.Equal(t, destAddr, sub.Recipient)
	expectDone(t, it, vm.CallOutput{Output: &vm.Output{Status: vm.StatusSuccess}})
}

func TestCallDepthLimit(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(5000), destAddr, 0, 0, 0, 0, 0).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).
		Bytes()
	msg := &vm.Message{Gas: 10000, Recipient: selfAddr, Depth: 1024}
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.True(t, new(uint256.Int).SetBytes(out.Data).IsZero())
}

func TestCallValueInStaticMode(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(5000), destAddr, 1, 0, 0, 0, 0).
		Bytes()
	msg := &vm.Message{Gas: 10000, Recipient: selfAddr, Static: true}
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusStaticModeViolation, out.Status)
}

func TestCallGasBeforeTangerine(t *testing.T) {
	// Before Tangerine Whistle there is no 63/64 capping: requesting more gas
	// than available is an out-of-gas.
	code := program.New().
		Call(uint256.NewInt(100000), destAddr, 0, 0, 0, 0, 0).
		Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 5000, Recipient: selfAddr}, vm.Homestead, nil)
	it = expectSuspend(t, it, nil, vm.InterruptAccountExists)
	out := expectDone(t, it, vm.AccountExistsStatus{Exists: true})
	require.Equal(t, vm.StatusOutOfGas, out.Status)
	require.Equal(t, int64(0), out.GasLeft)
}

func TestReturnDataAfterCall(t *testing.T) {
	code := program.New().
		Call(uint256.NewInt(5000), destAddr, 0, 0, 0, 0, 0).
		Op(vm.POP).
		Op(vm.RETURNDATASIZE).Push(0).Push(0).Op(vm.RETURNDATACOPY).
		Op(vm.RETURNDATASIZE).Push(0).Op(vm.RETURN).
		Bytes()
	it := vm.Analyze(code).ExecuteResumable(&vm.Message{Gas: 10000, Recipient: selfAddr}, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptCall)
	out := expectDone(t, it, vm.CallOutput{Output: &vm.Output{Status: vm.StatusRevert, Data: []byte("why")}})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, []byte("why"), out.Data)
}

func TestCreate(t *testing.T) {
	code := program.New().
		Push(0).Push(0).Push(0).Op(vm.CREATE).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).
		Bytes()
	msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)

	it = expectSuspend(t, it, nil, vm.InterruptCall)
	sub := it.CallMessage()
	require.Equal(t, vm.Create, sub.Kind)
	require.Equal(t, selfAddr, sub.Sender)
	require.Equal(t, 1, sub.Depth)
	require.Empty(t, sub.Input)
	require.Equal(t, int64(7867), sub.Gas) // all but 1/64th of the remainder

	created := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	out := expectDone(t, it, vm.CallOutput{Output: &vm.Output{
		Status:        vm.StatusSuccess,
		GasLeft:       7000,
		CreateAddress: &created,
	}})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.Equal(t, created, common.BytesToAddress(out.Data))
	require.Equal(t, int64(7109), out.GasLeft)
}

func TestCreate2Salt(t *testing.T) {
	code := program.New().
		Push(0x99).Push(0).Push(0).Push(0).Op(vm.CREATE2).
		Bytes()
	msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.London, nil)

	it = expectSuspend(t, it, nil, vm.InterruptCall)
	sub := it.CallMessage()
	require.Equal(t, vm.Create2, sub.Kind)
	require.Equal(t, common.Hash{31: 0x99}, sub.Salt)
	expectDone(t, it, vm.CallOutput{Output: &vm.Output{Status: vm.StatusSuccess}})
}

func TestCreateInsufficientBalance(t *testing.T) {
	code := program.New().
		Push(0).Push(0).Push(7).Op(vm.CREATE).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).
		Bytes()
	msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
	it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
	it = expectSuspend(t, it, nil, vm.InterruptGetBalance)
	require.Equal(t, selfAddr, it.Account())

	out := expectDone(t, it, vm.Balance{Balance: *uint256.NewInt(3)})
	require.Equal(t, vm.StatusSuccess, out.Status)
	require.True(t, new(uint256.Int).SetBytes(out.Data).IsZero())
}

func TestCreateInStaticMode(t *testing.T) {
	code := program.New().Push(0).Push(0).Push(0).Op(vm.CREATE).Bytes()
	msg := &vm.Message{Gas: 40000, Static: true}
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusStaticModeViolation, out.Status)
}

func TestSelfdestruct(t *testing.T) {
	code := program.New().Selfdestruct(destAddr).Bytes()

	t.Run("homestead", func(t *testing.T) {
		msg := &vm.Message{Gas: 100, Recipient: selfAddr}
		it := vm.Analyze(code).ExecuteResumable(msg, vm.Homestead, nil)
		it = expectSuspend(t, it, nil, vm.InterruptSelfdestruct)
		require.Equal(t, destAddr, it.Account())
		out := expectDone(t, it, nil)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(97), out.GasLeft)
		require.Equal(t, int64(24000), out.GasRefund)
	})

	t.Run("tangerine new account", func(t *testing.T) {
		msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
		it := vm.Analyze(code).ExecuteResumable(msg, vm.TangerineWhistle, nil)
		it = expectSuspend(t, it, nil, vm.InterruptAccountExists)
		require.Equal(t, destAddr, it.Account())
		it = expectSuspend(t, it, vm.AccountExistsStatus{Exists: false}, vm.InterruptSelfdestruct)
		out := expectDone(t, it, nil)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(40000-3-5000-25000), out.GasLeft)
	})

	t.Run("istanbul zero balance", func(t *testing.T) {
		msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
		it := vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil)
		it = expectSuspend(t, it, nil, vm.InterruptGetBalance)
		require.Equal(t, selfAddr, it.Account())
		// Nothing to transfer: the existence of the beneficiary is irrelevant.
		it = expectSuspend(t, it, vm.Balance{}, vm.InterruptSelfdestruct)
		out := expectDone(t, it, nil)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(24000), out.GasRefund)
	})

	t.Run("london cold no refund", func(t *testing.T) {
		msg := &vm.Message{Gas: 40000, Recipient: selfAddr}
		it := vm.Analyze(code).ExecuteResumable(msg, vm.London, nil)
		it = expectSuspend(t, it, nil, vm.InterruptAccessAccount)
		require.Equal(t, destAddr, it.Account())
		it = expectSuspend(t, it, vm.AccessAccountStatus{Status: vm.ColdAccess}, vm.InterruptGetBalance)
		it = expectSuspend(t, it, vm.Balance{Balance: *uint256.NewInt(5)}, vm.InterruptAccountExists)
		it = expectSuspend(t, it, vm.AccountExistsStatus{Exists: true}, vm.InterruptSelfdestruct)
		out := expectDone(t, it, nil)
		require.Equal(t, vm.StatusSuccess, out.Status)
		require.Equal(t, int64(0), out.GasRefund)
		// PUSH20 3 + SELFDESTRUCT 5000 + full cold account access 2600.
		require.Equal(t, int64(40000-3-5000-2600), out.GasLeft)
	})
}

func TestSelfdestructInStaticMode(t *testing.T) {
	code := program.New().Selfdestruct(destAddr).Bytes()
	msg := &vm.Message{Gas: 40000, Static: true}
	out := expectDone(t, vm.Analyze(code).ExecuteResumable(msg, vm.Istanbul, nil), nil)
	require.Equal(t, vm.StatusStaticModeViolation, out.Status)
}
