// acfsutil is a small CLI for poking at an ACFS disk image.
//
// Usage:
//
//	acfsutil <image> format [-cluster-size N] [-reserved N]
//	acfsutil <image> put <id> <file>
//	acfsutil <image> get <id> [out-file]
//	acfsutil <image> rm <id>
//	acfsutil <image> ls
//	acfsutil <image> stat
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/whnan/acfs"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: acfsutil <image> <format|put|get|rm|ls|stat> [args...]")
		os.Exit(1)
	}

	image := os.Args[1]
	cmd := os.Args[2]
	args := os.Args[3:]

	var err error
	switch cmd {
	case "format":
		err = runFormat(image, args)
	case "put":
		err = runPut(image, args)
	case "get":
		err = runGet(image, args)
	case "rm":
		err = runRm(image, args)
	case "ls":
		err = runLs(image, args)
	case "stat":
		err = runStat(image, args)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "acfsutil: %v\n", err)
		os.Exit(1)
	}
}

func runFormat(image string, args []string) error {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	clusterSize := fs.Uint("cluster-size", 256, "cluster size in bytes")
	reserved := fs.Uint("reserved", 0, "reserved cluster count hint (0 = auto)")
	size := fs.Uint("size", 1<<20, "image size in bytes, for a new image")
	fs.Parse(args)

	m, err := openOrCreateImage(image, uint32(*size))
	if err != nil {
		return err
	}
	defer m.Close()

	config := acfs.Config{ClusterSize: uint16(*clusterSize), ReservedClusters: uint16(*reserved)}
	eng, err := acfs.Format(m, config)
	if err != nil {
		return err
	}
	defer eng.Close()

	stats, _ := eng.GetStats()
	fmt.Printf("formatted: cluster_size=%d total_clusters=%d sys_clusters=%d capacity=%d free=%d\n",
		stats.ClusterSize, stats.TotalClusters, stats.SysClusters, stats.Capacity, stats.FreeClusters)
	return nil
}

func runPut(image string, args []string) error {
	clusterSize := uint16(256)
	if len(args) < 2 {
		return fmt.Errorf("usage: put <id> <file>")
	}
	id, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	eng, m, err := mountImage(image, clusterSize)
	if err != nil {
		return err
	}
	defer m.Close()
	defer eng.Close()

	if err := eng.Write(id, data, len(data)); err != nil {
		return err
	}
	fmt.Printf("wrote %q (%d bytes)\n", id, len(data))
	return nil
}

func runGet(image string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: get <id> [out-file]")
	}
	id := args[0]

	eng, m, err := mountImage(image, 256)
	if err != nil {
		return err
	}
	defer m.Close()
	defer eng.Close()

	size, err := eng.GetSize(id)
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	var n int
	if err := eng.Read(id, buf, &n); err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if len(args) >= 2 {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(buf[:n])
	return err
}

func runRm(image string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rm <id>")
	}
	eng, m, err := mountImage(image, 256)
	if err != nil {
		return err
	}
	defer m.Close()
	defer eng.Close()

	return eng.Delete(args[0])
}

func runLs(image string, args []string) error {
	eng, m, err := mountImage(image, 256)
	if err != nil {
		return err
	}
	defer m.Close()
	defer eng.Close()

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	idWidth := width - 16
	if idWidth < 8 {
		idWidth = 8
	}

	ids, err := eng.Ids()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Printf("%-*s\n", idWidth, id)
	}
	return nil
}

func runStat(image string, args []string) error {
	eng, m, err := mountImage(image, 256)
	if err != nil {
		return err
	}
	defer m.Close()
	defer eng.Close()

	stats, err := eng.GetStats()
	if err != nil {
		return err
	}
	fmt.Printf("cluster_size=%d total_clusters=%d sys_clusters=%d data_entries=%d free_clusters=%d capacity=%d\n",
		stats.ClusterSize, stats.TotalClusters, stats.SysClusters, stats.DataEntries, stats.FreeClusters, stats.Capacity)
	return nil
}

// mountImage opens image read-write and mounts an Engine over it, formatting
// if no valid filesystem is found.
func mountImage(image string, clusterSize uint16) (*acfs.Engine, *fileMedium, error) {
	info, err := os.Stat(image)
	size := uint32(1 << 20)
	if err == nil {
		size = uint32(info.Size())
	}

	m, err := openOrCreateImage(image, size)
	if err != nil {
		return nil, nil, err
	}

	// Mount an existing filesystem whatever cluster size it was formatted
	// with; only format (with clusterSize) when none is found.
	for cs := uint16(64); cs <= 4096; cs *= 2 {
		if eng, err := acfs.Open(m, acfs.Config{ClusterSize: cs}); err == nil {
			return eng, m, nil
		}
	}
	eng, err := acfs.Open(m, acfs.Config{ClusterSize: clusterSize, FormatIfInvalid: true})
	if err != nil {
		m.Close()
		return nil, nil, err
	}
	return eng, m, nil
}
