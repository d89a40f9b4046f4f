// Package hostinfo answers what the host machine can offer a pipeline run:
// logical cores and total physical memory. Detection is platform-specific
// (one implementation per supported OS, selected by build tags); estimation
// policy on top of it is shared.
package hostinfo

import (
	"runtime"

	"github.com/me/varpipe/pkg/model"
)

// HostInfo reports host capabilities. Implementations do not validate what
// the host reports; an implausible value (even zero) is passed through and
// clamped only by Estimate's floors.
type HostInfo interface {
	// NumCPU returns the number of logical cores.
	NumCPU() int

	// TotalMemoryBytes returns total physical memory in bytes.
	// Returns 0 if the platform query fails.
	TotalMemoryBytes() uint64
}

// Detect returns the HostInfo implementation for the current platform.
func Detect() HostInfo {
	return platformHostInfo{}
}

// EstimateOptions selects the sizing policy. The two workflows in this
// repository differ: the variant-calling path leaves one core for the OS and
// takes 85% of memory, the alignment path uses every core and 90%.
type EstimateOptions struct {
	// ReserveCore leaves one detected core unused when defaulting Threads.
	ReserveCore bool

	// MemoryFraction scales detected total memory when defaulting MemoryGiB.
	// Zero means DefaultMemoryFraction.
	MemoryFraction float64
}

// DefaultMemoryFraction is applied when EstimateOptions.MemoryFraction is unset.
const DefaultMemoryFraction = 0.85

const bytesPerGiB = 1 << 30

// Estimate computes the resource budget for a run. Explicit values win
// as-is; zero values are defaulted from the host. Both results are floored
// at 1 regardless of what the host reports.
func Estimate(host HostInfo, opts EstimateOptions, explicitThreads, explicitMemGiB int) model.Resources {
	threads := explicitThreads
	if threads <= 0 {
		threads = host.NumCPU()
		if opts.ReserveCore {
			threads--
		}
	}
	if threads < 1 {
		threads = 1
	}

	memGiB := explicitMemGiB
	if memGiB <= 0 {
		frac := opts.MemoryFraction
		if frac <= 0 {
			frac = DefaultMemoryFraction
		}
		totalGiB := float64(host.TotalMemoryBytes()) / bytesPerGiB
		memGiB = int(totalGiB * frac)
	}
	if memGiB < 1 {
		memGiB = 1
	}

	return model.Resources{Threads: threads, MemoryGiB: memGiB}
}

type platformHostInfo struct{}

func (platformHostInfo) NumCPU() int {
	return runtime.NumCPU()
}
