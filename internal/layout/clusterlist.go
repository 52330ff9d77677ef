// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"encoding/binary"
	"fmt"
)

// ClusterListSlotSize is the fixed byte width of one entry's cluster-list
// slot: MaxClusterList 16-bit cluster indices.
const ClusterListSlotSize = MaxClusterList * 2

// EncodeClusterList writes list into a ClusterListSlotSize-byte slot. Only
// the first len(list) of the slot's MaxClusterList entries are meaningful;
// the rest are zeroed.
func EncodeClusterList(buf []byte, list []ClusterID) error {
	if len(buf) < ClusterListSlotSize {
		return fmt.Errorf("layout: cluster list slot buffer too small: %d", len(buf))
	}
	if len(list) > MaxClusterList {
		return fmt.Errorf("%w: %d > %d", ErrClusterListOverflow, len(list), MaxClusterList)
	}
	for i, id := range list {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], id)
	}
	for i := len(list); i < MaxClusterList; i++ {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], 0)
	}
	return nil
}

// DecodeClusterList reads the first count cluster indices from a
// ClusterListSlotSize-byte slot.
func DecodeClusterList(buf []byte, count uint16) (list []ClusterID, err error) {
	if len(buf) < ClusterListSlotSize {
		err = fmt.Errorf("layout: cluster list slot buffer too small: %d", len(buf))
		return
	}
	if count > MaxClusterList {
		err = fmt.Errorf("%w: %d > %d", ErrClusterListOverflow, count, MaxClusterList)
		return
	}
	list = make([]ClusterID, count)
	for i := range list {
		list[i] = binary.LittleEndian.Uint16(buf[i*2 : i*2+2])
	}
	return
}
