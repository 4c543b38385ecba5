package normalize

import (
	"context"
	"sync"

	"github.com/jmylchreest/pastehtml/pkg/source"
)

// NormalizeMany normalizes documents with at most concurrency running at
// once. Results arrive in completion order and the channel is closed when
// every document has been handled. Documents not yet started when ctx is
// cancelled are returned with the context error.
func (n *Normalizer) NormalizeMany(ctx context.Context, docs []source.Document, concurrency int) <-chan *Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(chan *Result, len(docs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, doc := range docs {
		wg.Add(1)
		go func(d source.Document) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- &Result{Document: d.Name, Stats: NewStats(), Error: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results <- &Result{Document: d.Name, Stats: NewStats(), Error: err}
				return
			}
			results <- n.Normalize(d)
		}(doc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
