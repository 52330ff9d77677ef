// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/whnan/acfs"
	"github.com/whnan/acfs/acfsmem"
)

// S1: format a 4 KiB medium with S=128, R=2.
func TestFormatAndFirstWrite(t *testing.T) {
	m := acfsmem.NewRAM(0, 4096)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128, ReservedClusters: 2})
	require.NoError(t, err)

	stats, err := eng.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 32, stats.TotalClusters)
	require.EqualValues(t, 2, stats.SysClusters)
	require.EqualValues(t, 30, stats.FreeClusters)
	require.EqualValues(t, 0, stats.DataEntries)

	require.NoError(t, eng.Write("a", []byte("Hi\x00"), 3))

	stats, err = eng.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 29, stats.FreeClusters)
	require.EqualValues(t, 1, stats.DataEntries)

	buf := make([]byte, 16)
	var n int
	require.NoError(t, eng.Read("a", buf, &n))
	require.Equal(t, 3, n)
	require.Equal(t, []byte("Hi\x00"), buf[:3])
}

// S2: CRC mismatch after on-medium corruption.
func TestCrcMismatchOnCorruption(t *testing.T) {
	m := acfsmem.NewRAM(0, 32*1024)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 256})
	require.NoError(t, err)

	payload := make([]byte, 500)
	for i := range payload {
		payload[i] = 0xA5
	}
	require.NoError(t, eng.Write("x", payload, len(payload)))

	stats, err := eng.GetStats()
	require.NoError(t, err)

	// Corrupt a byte inside the entry's second data cluster.
	secondClusterAddr := uint32(stats.SysClusters+1) * uint32(stats.ClusterSize)
	bad := []byte{0xFF}
	require.NoError(t, m.WriteAt(secondClusterAddr, bad))

	buf := make([]byte, len(payload))
	var n int
	err = eng.Read("x", buf, &n)
	require.ErrorIs(t, err, acfs.ErrCrcMismatch)
}

// S3: delete compacts the directory and restores free clusters.
func TestDeleteShiftsDirectoryAndFreesClusters(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 64, ReservedClusters: 4})
	require.NoError(t, err)

	a := make([]byte, 100)
	b := make([]byte, 100)
	require.NoError(t, eng.Write("a", a, len(a)))
	require.NoError(t, eng.Write("b", b, len(b)))

	statsBefore, _ := eng.GetStats()

	require.NoError(t, eng.Delete("a"))

	existsA, err := eng.Exists("a")
	require.NoError(t, err)
	require.False(t, existsA)

	existsB, err := eng.Exists("b")
	require.NoError(t, err)
	require.True(t, existsB)

	statsAfter, _ := eng.GetStats()
	require.Equal(t, statsBefore.FreeClusters+2, statsAfter.FreeClusters)

	out := make([]byte, len(b))
	var n int
	require.NoError(t, eng.Read("b", out, &n))
	require.Equal(t, b, out[:n])
}

// S4: rewrite with a larger size changes the cluster count in place.
func TestRewriteChangesClusterCount(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	statsStart, _ := eng.GetStats()

	require.NoError(t, eng.Write("p", make([]byte, 50), 50))
	require.NoError(t, eng.Write("p", make([]byte, 300), 300))

	stats, err := eng.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.DataEntries)
	require.Equal(t, statsStart.FreeClusters-3, stats.FreeClusters)
}

// S5: mounting an unformatted medium.
func TestMountUnformattedMedium(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)

	_, err := acfs.Open(m, acfs.Config{ClusterSize: 256, FormatIfInvalid: false})
	require.ErrorIs(t, err, acfs.ErrInvalidFilesystem)

	eng, err := acfs.Open(m, acfs.Config{ClusterSize: 256, FormatIfInvalid: true})
	require.NoError(t, err)

	stats, err := eng.GetStats()
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.DataEntries)
}

// S6: round trip across a remount.
func TestRemountPreservesData(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	require.NoError(t, eng.Write("k", []byte("0123456789"), 10))
	require.NoError(t, eng.Close())

	eng2, err := acfs.Open(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	buf := make([]byte, 10)
	var n int
	require.NoError(t, eng2.Read("k", buf, &n))
	require.Equal(t, 10, n)
	require.Equal(t, []byte("0123456789"), buf)
}

func TestIDLengthBoundary(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	id31 := make([]byte, 31)
	for i := range id31 {
		id31[i] = 'a'
	}
	require.NoError(t, eng.Write(string(id31), []byte("x"), 1))

	id32 := make([]byte, 32)
	for i := range id32 {
		id32[i] = 'b'
	}
	err = eng.Write(string(id32), []byte("x"), 1)
	require.ErrorIs(t, err, acfs.ErrInvalidParam)
}

func TestNoSpace(t *testing.T) {
	m := acfsmem.NewRAM(0, 1024)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 64, ReservedClusters: 10})
	require.NoError(t, err)

	stats, _ := eng.GetStats()
	free := stats.FreeClusters

	for i := uint16(0); i < free; i++ {
		id := string(rune('a' + i))
		require.NoError(t, eng.Write(id, []byte("x"), 1))
	}

	err = eng.Write("overflow", []byte("x"), 1)
	require.ErrorIs(t, err, acfs.ErrNoSpace)
}

func TestClusterFull(t *testing.T) {
	m := acfsmem.NewRAM(0, 1<<16)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 64, ReservedClusters: 200})
	require.NoError(t, err)

	stats, _ := eng.GetStats()
	for i := uint16(0); i < stats.Capacity; i++ {
		id := padID(i)
		require.NoError(t, eng.Write(id, []byte("x"), 1))
	}

	err = eng.Write(padID(stats.Capacity), []byte("x"), 1)
	require.ErrorIs(t, err, acfs.ErrClusterFull)
}

func TestReadBufferTooSmall(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	require.NoError(t, eng.Write("a", make([]byte, 10), 10))

	buf := make([]byte, 9)
	var n int
	err = eng.Read("a", buf, &n)
	require.ErrorIs(t, err, acfs.ErrInvalidParam)
	require.Equal(t, 10, n)
}

func TestRewriteIdempotence(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	data := []byte("same payload")
	require.NoError(t, eng.Write("k", data, len(data)))
	stats1, _ := eng.GetStats()

	require.NoError(t, eng.Write("k", data, len(data)))
	stats2, _ := eng.GetStats()

	require.Equal(t, stats1, stats2)
	require.EqualValues(t, 1, stats2.DataEntries)
}

func TestCheckIntegrity(t *testing.T) {
	m := acfsmem.NewRAM(0, 8192)
	eng, err := acfs.Format(m, acfs.Config{ClusterSize: 128})
	require.NoError(t, err)

	require.NoError(t, eng.Write("a", []byte("clean data"), 10))
	require.NoError(t, eng.CheckIntegrity())
}

func padID(i uint16) string {
	b := make([]byte, 4)
	b[0] = byte('a' + i%26)
	b[1] = byte('a' + (i/26)%26)
	b[2] = byte('a' + (i/676)%26)
	b[3] = byte('a' + (i/17576)%26)
	return string(b)
}
