package collection

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mirrorlib/mirrorlib/internal/library"
)

// jobResult is one harvested materialization outcome.
type jobResult struct {
	item *library.Item
	dest string
	err  error
}

// jobPool runs materialization jobs with bounded concurrency. Classification
// submits at most one job per item; drain yields each result exactly once,
// in completion order. A failing job never cancels its siblings.
type jobPool struct {
	group *errgroup.Group

	mu      sync.Mutex
	results []jobResult
}

func newJobPool(workers int) *jobPool {
	group := new(errgroup.Group)
	group.SetLimit(workers)
	return &jobPool{group: group}
}

// submit enqueues a materialization job for an item. fn returns the path of
// the produced file.
func (p *jobPool) submit(item *library.Item, fn func() (string, error)) {
	p.group.Go(func() error {
		dest, err := fn()
		p.mu.Lock()
		p.results = append(p.results, jobResult{item: item, dest: dest, err: err})
		p.mu.Unlock()
		return nil
	})
}

// drain blocks until every submitted job has completed and returns their
// results. It also releases the pool; drain is called exactly once per run.
func (p *jobPool) drain() []jobResult {
	_ = p.group.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	results := p.results
	p.results = nil
	return results
}
