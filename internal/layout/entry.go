// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"encoding/binary"
	"fmt"
)

// EntryRecord is the fixed-width on-medium shape of one directory entry,
// excluding its cluster list (stored in a parallel slot, see
// EncodeClusterList).
type EntryRecord struct {
	DataID       [MaxDataIDLen]byte // NUL-terminated, NUL-padded
	DataSize     uint32
	ClusterCount uint16
	Crc32        uint32
	IsValid      bool
}

// SetID stores id NUL-terminated and NUL-padded. It never truncates: an id
// longer than MaxDataIDLen-1 bytes is rejected with ErrDataIDTooLong.
func (e *EntryRecord) SetID(id string) error {
	if len(id) >= MaxDataIDLen {
		return fmt.Errorf("%w: %q", ErrDataIDTooLong, id)
	}
	var buf [MaxDataIDLen]byte
	copy(buf[:], id)
	e.DataID = buf
	return nil
}

// ID returns the entry's data_id as a Go string, stopping at the first NUL.
func (e *EntryRecord) ID() string {
	n := 0
	for n < len(e.DataID) && e.DataID[n] != 0 {
		n++
	}
	return string(e.DataID[:n])
}

// Encode writes the entry record to an EntryRecordSize-byte buffer.
func (e *EntryRecord) Encode(buf []byte) {
	if len(buf) < EntryRecordSize {
		panic("layout: entry record buffer too small")
	}
	copy(buf[0:MaxDataIDLen], e.DataID[:])
	binary.LittleEndian.PutUint32(buf[32:36], e.DataSize)
	binary.LittleEndian.PutUint16(buf[36:38], e.ClusterCount)
	binary.LittleEndian.PutUint32(buf[38:42], e.Crc32)
	if e.IsValid {
		buf[42] = 1
	} else {
		buf[42] = 0
	}
	buf[43] = 0 // pad
}

// DecodeEntry reads an entry record from an EntryRecordSize-byte buffer.
func DecodeEntry(buf []byte) (e EntryRecord, err error) {
	if len(buf) < EntryRecordSize {
		err = fmt.Errorf("layout: entry record buffer too small: %d", len(buf))
		return
	}
	copy(e.DataID[:], buf[0:MaxDataIDLen])
	e.DataSize = binary.LittleEndian.Uint32(buf[32:36])
	e.ClusterCount = binary.LittleEndian.Uint16(buf[36:38])
	e.Crc32 = binary.LittleEndian.Uint32(buf[38:42])
	e.IsValid = buf[42] != 0
	return
}
