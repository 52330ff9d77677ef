// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package acfs

// Config controls how Open formats or mounts the reserved region on a
// Medium. It corresponds to the parameters the original implementation
// took as direct arguments to acfs_init.
type Config struct {
	// ClusterSize is the cluster size S in bytes. Must be a power of two
	// in [64, 4096]. Required.
	ClusterSize uint16

	// ReservedClusters is a hint for the reserved region size R, in
	// clusters. Zero selects the smallest R that holds the superblock
	// plus at least one directory entry.
	ReservedClusters uint16

	// FormatIfInvalid causes Open to call Format when the medium does not
	// contain a valid ACFS superblock, instead of returning
	// ErrInvalidFilesystem.
	FormatIfInvalid bool

	// EnableCRCCheck is accepted for parity with the original mount
	// configuration but has no effect: Read and CheckIntegrity always
	// recompute and compare a stored CRC32, unconditionally.
	EnableCRCCheck bool
}
