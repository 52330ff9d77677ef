// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package layout

import "hash/crc32"

var ieeeTable = crc32.MakeTable(crc32.IEEE)

// Checksum computes the standard CRC-32 (polynomial 0xEDB88320, reflected,
// init/final 0xFFFFFFFF) over data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, ieeeTable)
}
