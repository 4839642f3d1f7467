// Package parallel holds the bounded fan-out helper used for independent
// per-member computations.
package parallel

import "sync"

// ForEach runs body(i) for i in [0, length) with at most limit goroutines in
// flight. Bodies must not share mutable state unless they synchronize it
// themselves.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)
	wg.Add(length)
	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			body(i)
		}(i)
	}
	wg.Wait()
}
