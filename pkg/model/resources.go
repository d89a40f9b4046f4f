package model

// Resources holds the compute budget handed to external tools.
// Parallelism is delegated entirely to the invoked tool via Threads;
// the runner itself is strictly sequential.
type Resources struct {
	// Threads is the thread count passed to external tools. Always >= 1.
	Threads int

	// MemoryGiB is the heap budget in GiB passed to external tools
	// (e.g. as a JVM -Xmx value). Always >= 1.
	MemoryGiB int
}
