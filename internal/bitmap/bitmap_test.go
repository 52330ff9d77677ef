// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRebuildMarksReservedAndLists(t *testing.T) {
	b := New(16)
	b.Rebuild(4, [][]ClusterID{{5, 7}, {6}})

	for i := ClusterID(0); i < 4; i++ {
		require.True(t, b.Used(i), "cluster %d should be reserved", i)
	}
	require.True(t, b.Used(5))
	require.True(t, b.Used(6))
	require.True(t, b.Used(7))
	require.False(t, b.Used(8))
	require.Equal(t, uint16(16-7), b.FreeCount())
}

func TestAllocateReturnsAscendingFreeClusters(t *testing.T) {
	b := New(8)
	b.Rebuild(2, nil)

	list, err := b.Allocate(2, 3)
	require.NoError(t, err)
	require.Equal(t, []ClusterID{2, 3, 4}, list)
	require.True(t, b.Used(2))
	require.True(t, b.Used(3))
	require.True(t, b.Used(4))
	require.False(t, b.Used(5))
}

func TestAllocateInsufficientSpaceRollsBack(t *testing.T) {
	b := New(8)
	b.Rebuild(6, nil) // only clusters 6,7 free

	before := b.FreeCount()
	list, err := b.Allocate(6, 3)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Nil(t, list)
	require.Equal(t, before, b.FreeCount(), "failed allocation must not consume bits")
}

func TestFreeClearsBits(t *testing.T) {
	b := New(8)
	b.Rebuild(2, nil)

	list, err := b.Allocate(2, 2)
	require.NoError(t, err)

	b.Free(list)
	for _, id := range list {
		require.False(t, b.Used(id))
	}
}

func TestAllocateZeroReturnsNil(t *testing.T) {
	b := New(8)
	b.Rebuild(2, nil)

	list, err := b.Allocate(2, 0)
	require.NoError(t, err)
	require.Nil(t, list)
}
