package scheduler

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/gleyba/uber-poet/errors"
)

// memoryPerWorker is the headroom one in-flight module generation needs
const memoryPerWorker = 256 << 20

// DefaultWorkers is the host's logical CPU count
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// getMemoryStats returns current memory usage in bytes
func getMemoryStats() (total uint64, available uint64, err error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to get memory stats")
	}
	return v.Total, v.Available, nil
}

// checkMemoryPressure returns a warning when workers may not fit in
// available memory, empty string if OK
func checkMemoryPressure(workers int) string {
	total, available, err := getMemoryStats()
	if err != nil {
		return "" // Can't check, assume OK
	}
	return memoryWarning(workers, total, available)
}

func memoryWarning(workers int, total, available uint64) string {
	recommended := max(1, int(available/memoryPerWorker))
	if workers <= recommended {
		return ""
	}
	const gb = 1024 * 1024 * 1024
	return fmt.Sprintf(
		"Worker count (%d) exceeds recommended (%d) for available memory (%.1f/%.1fGB). "+
			"Consider lowering generation.concurrency.",
		workers, recommended, float64(total-available)/gb, float64(total)/gb)
}
