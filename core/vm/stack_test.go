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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	s := newstack()
	defer returnStack(s)

	s.push(uint256.NewInt(1))
	s.push(uint256.NewInt(2))
	require.Equal(t, 2, s.len())
	require.Equal(t, uint256.NewInt(2), s.peek())

	v := s.pop()
	require.Equal(t, uint64(2), v.Uint64())
	require.Equal(t, 1, s.len())
}

func TestStackDupSwap(t *testing.T) {
	s := newstack()
	defer returnStack(s)

	s.push(uint256.NewInt(10))
	s.push(uint256.NewInt(20))
	s.push(uint256.NewInt(30))

	s.dup(3) // copy of the 10
	require.Equal(t, 4, s.len())
	require.Equal(t, uint64(10), s.peek().Uint64())

	s.swap(2) // top with the 20
	require.Equal(t, uint64(20), s.peek().Uint64())
	require.Equal(t, uint64(10), s.Back(2).Uint64())
	require.Equal(t, uint64(30), s.Back(1).Uint64())
}

func TestStackPoolReuseIsClean(t *testing.T) {
	s := newstack()
	s.push(uint256.NewInt(42))
	returnStack(s)

	s = newstack()
	defer returnStack(s)
	require.Equal(t, 0, s.len())
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	m.Set32(16, uint256.NewInt(0x0102))

	want := make([]byte, 32)
	want[30], want[31] = 1, 2
	require.Equal(t, want, m.GetCopy(16, 32))
}

func TestMemoryZeroSizeAccess(t *testing.T) {
	m := NewMemory()
	require.Nil(t, m.GetCopy(100, 0))
	require.Nil(t, m.GetPtr(100, 0))
	m.Set(100, 0, nil) // no-op, must not panic
}

func TestMemoryGetCopyIsDetached(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 2, []byte{1, 2})

	cpy := m.GetCopy(0, 2)
	cpy[0] = 0xff
	require.Equal(t, []byte{1, 2}, m.GetPtr(0, 2))
}
