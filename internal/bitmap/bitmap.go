// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package bitmap implements the in-memory free-cluster bitmap that backs
// the cluster allocator (spec §4.D). Bit i of the bitmap is set iff cluster
// i is in use; bit-in-byte ordering is LSB-first.
package bitmap

import (
	"errors"

	"github.com/whnan/acfs/internal/layout"
)

// ClusterID is a logical cluster index.
type ClusterID = layout.ClusterID

// ErrNoSpace is returned by Allocate when fewer than the requested number
// of clear bits remain.
var ErrNoSpace = errors.New("bitmap: no space")

// Bitmap is a ⌈N/8⌉-byte free-cluster map over clusters [0, N).
type Bitmap struct {
	bits  []byte
	total uint16
}

// New allocates a bitmap covering [0, total).
func New(total uint16) *Bitmap {
	return &Bitmap{
		bits:  make([]byte, (int(total)+7)/8),
		total: total,
	}
}

// Rebuild zeroes the bitmap, marks [0, reserved) used, then marks every
// cluster referenced by lists as used. It establishes invariant (3) of the
// spec at mount time.
func (b *Bitmap) Rebuild(reserved uint16, lists [][]ClusterID) {
	for i := range b.bits {
		b.bits[i] = 0
	}
	for i := uint16(0); i < reserved; i++ {
		b.set(i)
	}
	for _, list := range lists {
		for _, id := range list {
			b.set(id)
		}
	}
}

// Used reports whether cluster i is marked in use.
func (b *Bitmap) Used(i ClusterID) bool {
	return b.bits[i/8]&(1<<(i%8)) != 0
}

func (b *Bitmap) set(i ClusterID) {
	b.bits[i/8] |= 1 << (i % 8)
}

func (b *Bitmap) clear(i ClusterID) {
	b.bits[i/8] &^= 1 << (i % 8)
}

// Allocate scans forward from reserved for the first k clear bits, setting
// them. If fewer than k are found, any bits it set are rolled back and
// ErrNoSpace is returned. Clusters are returned in ascending index order;
// the allocator makes no attempt to coalesce contiguous runs beyond this
// natural ordering.
func (b *Bitmap) Allocate(reserved uint16, k uint16) ([]ClusterID, error) {
	if k == 0 {
		return nil, nil
	}

	list := make([]ClusterID, 0, k)
	for i := reserved; i < b.total && uint16(len(list)) < k; i++ {
		if !b.Used(i) {
			b.set(i)
			list = append(list, i)
		}
	}

	if uint16(len(list)) < k {
		for _, id := range list {
			b.clear(id)
		}
		return nil, ErrNoSpace
	}
	return list, nil
}

// Free clears every bit in list. In debug builds (-tags debug) it panics if
// any listed bit was not already set, per spec §4.D's debug-checked
// precondition.
func (b *Bitmap) Free(list []ClusterID) {
	for _, id := range list {
		assertUsed("bitmap.Free", b, id)
		b.clear(id)
	}
}

// FreeCount returns the number of clear bits in [0, total).
func (b *Bitmap) FreeCount() uint16 {
	var used uint16
	for i := uint16(0); i < b.total; i++ {
		if b.Used(i) {
			used++
		}
	}
	return b.total - used
}
