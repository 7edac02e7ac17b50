// package parallel contains parallel ForEach() plus the ordered Digest used to fingerprint concurrent results.
package parallel

import "runtime"
import "sync"

import "github.com/klauspost/cpuid/v2"

// Threads reports the number of logical cores, falling back to runtime.NumCPU
// when the CPU could not be identified.
func Threads() int {
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return runtime.NumCPU()
}

// Brand returns the processor brand string, or "unknown".
func Brand() string {
	if cpuid.CPU.BrandName == "" {
		return "unknown"
	}
	return cpuid.CPU.BrandName
}

// ForEach executes a for loop with a limited number of concurrent goroutines.
// Each goroutine processes one integer, from 0 to length. A limit of zero or
// below uses Threads().
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = Threads()
	}
	if length <= 0 {
		return // No iterations to perform
	}

	sem := make(chan struct{}, limit) // Semaphore with buffer size 'limit'
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{} // Acquire semaphore
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore after function exits

			body(i)
		}(i)
	}

	wg.Wait() // Wait for all goroutines to finish
}
