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

import "github.com/evmint/evmint/params"

// gasTable holds the constant gas cost of every opcode for one revision.
// undefinedGas marks instructions not defined in that revision; the constant
// part of access-metered instructions is the warm cost from Berlin on, with
// the cold surcharge applied dynamically.
type gasTable [256]int16

const undefinedGas int16 = -1

// stackProps describes the stack discipline of an instruction: the minimum
// stack height it requires and the net height change it causes. Used by the
// analyzer to validate whole basic blocks at once.
type stackProps struct {
	required int8
	change   int8
}

var opStackProps = [256]stackProps{
	STOP:       {0, 0},
	ADD:        {2, -1},
	MUL:        {2, -1},
	SUB:        {2, -1},
	DIV:        {2, -1},
	SDIV:       {2, -1},
	MOD:        {2, -1},
	SMOD:       {2, -1},
	ADDMOD:     {3, -2},
	MULMOD:     {3, -2},
	EXP:        {2, -1},
	SIGNEXTEND: {2, -1},

	LT:     {2, -1},
	GT:     {2, -1},
	SLT:    {2, -1},
	SGT:    {2, -1},
	EQ:     {2, -1},
	ISZERO: {1, 0},
	AND:    {2, -1},
	OR:     {2, -1},
	XOR:    {2, -1},
	NOT:    {1, 0},
	BYTE:   {2, -1},
	SHL:    {2, -1},
	SHR:    {2, -1},
	SAR:    {2, -1},

	KECCAK256: {2, -1},

	ADDRESS:        {0, 1},
	BALANCE:        {1, 0},
	ORIGIN:         {0, 1},
	CALLER:         {0, 1},
	CALLVALUE:      {0, 1},
	CALLDATALOAD:   {1, 0},
	CALLDATASIZE:   {0, 1},
	CALLDATACOPY:   {3, -3},
	CODESIZE:       {0, 1},
	CODECOPY:       {3, -3},
	GASPRICE:       {0, 1},
	EXTCODESIZE:    {1, 0},
	EXTCODECOPY:    {4, -4},
	RETURNDATASIZE: {0, 1},
	RETURNDATACOPY: {3, -3},
	EXTCODEHASH:    {1, 0},

	BLOCKHASH:   {1, 0},
	COINBASE:    {0, 1},
	TIMESTAMP:   {0, 1},
	NUMBER:      {0, 1},
	DIFFICULTY:  {0, 1},
	GASLIMIT:    {0, 1},
	CHAINID:     {0, 1},
	SELFBALANCE: {0, 1},
	BASEFEE:     {0, 1},

	POP:      {1, -1},
	MLOAD:    {1, 0},
	MSTORE:   {2, -2},
	MSTORE8:  {2, -2},
	SLOAD:    {1, 0},
	SSTORE:   {2, -2},
	JUMP:     {1, -1},
	JUMPI:    {2, -2},
	PC:       {0, 1},
	MSIZE:    {0, 1},
	GAS:      {0, 1},
	JUMPDEST: {0, 0},

	LOG0: {2, -2},
	LOG1: {3, -3},
	LOG2: {4, -4},
	LOG3: {5, -5},
	LOG4: {6, -6},

	CREATE:       {3, -2},
	CALL:         {7, -6},
	CALLCODE:     {7, -6},
	RETURN:       {2, -2},
	DELEGATECALL: {6, -5},
	CREATE2:      {4, -3},
	STATICCALL:   {6, -5},
	REVERT:       {2, -2},
	INVALID:      {0, 0},
	SELFDESTRUCT: {1, -1},
}

func init() {
	for i := 0; i < 32; i++ {
		opStackProps[int(PUSH1)+i] = stackProps{0, 1}
	}
	for i := 0; i < 16; i++ {
		opStackProps[int(DUP1)+i] = stackProps{int8(i + 1), 1}
		opStackProps[int(SWAP1)+i] = stackProps{int8(i + 2), 0}
	}
}

func newFrontierGasTable() *gasTable {
	var t gasTable
	for i := range t {
		t[i] = undefinedGas
	}
	t[STOP] = 0
	t[ADD] = 3
	t[MUL] = 5
	t[SUB] = 3
	t[DIV] = 5
	t[SDIV] = 5
	t[MOD] = 5
	t[SMOD] = 5
	t[ADDMOD] = 8
	t[MULMOD] = 8
	t[EXP] = 10
	t[SIGNEXTEND] = 5
	t[LT] = 3
	t[GT] = 3
	t[SLT] = 3
	t[SGT] = 3
	t[EQ] = 3
	t[ISZERO] = 3
	t[AND] = 3
	t[OR] = 3
	t[XOR] = 3
	t[NOT] = 3
	t[BYTE] = 3
	t[KECCAK256] = 30
	t[ADDRESS] = 2
	t[BALANCE] = 20
	t[ORIGIN] = 2
	t[CALLER] = 2
	t[CALLVALUE] = 2
	t[CALLDATALOAD] = 3
	t[CALLDATASIZE] = 2
	t[CALLDATACOPY] = 3
	t[CODESIZE] = 2
	t[CODECOPY] = 3
	t[GASPRICE] = 2
	t[EXTCODESIZE] = 20
	t[EXTCODECOPY] = 20
	t[BLOCKHASH] = 20
	t[COINBASE] = 2
	t[TIMESTAMP] = 2
	t[NUMBER] = 2
	t[DIFFICULTY] = 2
	t[GASLIMIT] = 2
	t[POP] = 2
	t[MLOAD] = 3
	t[MSTORE] = 3
	t[MSTORE8] = 3
	t[SLOAD] = 50
	t[SSTORE] = 0
	t[JUMP] = 8
	t[JUMPI] = 10
	t[PC] = 2
	t[MSIZE] = 2
	t[GAS] = 2
	t[JUMPDEST] = 1
	for op := PUSH1; op <= PUSH32; op++ {
		t[op] = 3
	}
	for i := 0; i < 16; i++ {
		t[int(DUP1)+i] = 3
		t[int(SWAP1)+i] = 3
	}
	for i := 0; i < 5; i++ {
		t[int(LOG0)+i] = int16((1 + i) * 375)
	}
	t[CREATE] = 32000
	t[CALL] = 40
	t[CALLCODE] = 40
	t[RETURN] = 0
	t[INVALID] = 0
	t[SELFDESTRUCT] = 0
	return &t
}

func newHomesteadGasTable() *gasTable {
	t := *newFrontierGasTable()
	t[DELEGATECALL] = 40
	return &t
}

func newTangerineWhistleGasTable() *gasTable {
	t := *newHomesteadGasTable()
	t[BALANCE] = 400
	t[EXTCODESIZE] = 700
	t[EXTCODECOPY] = 700
	t[SLOAD] = 200
	t[CALL] = 700
	t[CALLCODE] = 700
	t[DELEGATECALL] = 700
	t[SELFDESTRUCT] = 5000
	return &t
}

func newSpuriousDragonGasTable() *gasTable {
	return newTangerineWhistleGasTable()
}

func newByzantiumGasTable() *gasTable {
	t := *newSpuriousDragonGasTable()
	t[RETURNDATASIZE] = 2
	t[RETURNDATACOPY] = 3
	t[STATICCALL] = 700
	t[REVERT] = 0
	return &t
}

func newConstantinopleGasTable() *gasTable {
	t := *newByzantiumGasTable()
	t[SHL] = 3
	t[SHR] = 3
	t[SAR] = 3
	t[EXTCODEHASH] = 400
	t[CREATE2] = 32000
	return &t
}

func newPetersburgGasTable() *gasTable {
	return newConstantinopleGasTable()
}

func newIstanbulGasTable() *gasTable {
	t := *newPetersburgGasTable()
	t[BALANCE] = 700
	t[CHAINID] = 2
	t[EXTCODEHASH] = 700
	t[SELFBALANCE] = 5
	t[SLOAD] = 800
	return &t
}

func newBerlinGasTable() *gasTable {
	t := *newIstanbulGasTable()
	// Warm access cost; cold surcharges are charged dynamically (EIP-2929).
	warm := int16(params.WarmStorageReadCostEIP2929)
	t[EXTCODESIZE] = warm
	t[EXTCODECOPY] = warm
	t[EXTCODEHASH] = warm
	t[BALANCE] = warm
	t[CALL] = warm
	t[CALLCODE] = warm
	t[DELEGATECALL] = warm
	t[STATICCALL] = warm
	t[SLOAD] = warm
	return &t
}

func newLondonGasTable() *gasTable {
	t := *newBerlinGasTable()
	t[BASEFEE] = 2
	return &t
}

// gasTables holds one constant-gas table per revision.
var gasTables = [numRevisions]*gasTable{
	Frontier:         newFrontierGasTable(),
	Homestead:        newHomesteadGasTable(),
	TangerineWhistle: newTangerineWhistleGasTable(),
	SpuriousDragon:   newSpuriousDragonGasTable(),
	Byzantium:        newByzantiumGasTable(),
	Constantinople:   newConstantinopleGasTable(),
	Petersburg:       newPetersburgGasTable(),
	Istanbul:         newIstanbulGasTable(),
	Berlin:           newBerlinGasTable(),
	London:           newLondonGasTable(),
}
