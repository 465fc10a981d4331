package starlark

import (
	"fmt"
	"sync"

	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds the work a single configuration script may do.
const DefaultMaxSteps = 1_000_000

// ThreadPool recycles Starlark threads across document evaluations. Threads
// handed out are configured for configuration scripts: load() is rejected and
// execution stops after maxSteps.
type ThreadPool struct {
	mu       sync.Mutex
	threads  []*starlark.Thread
	maxSize  int
	maxSteps uint64
}

// NewThreadPool creates a pool keeping at most maxSize idle threads.
// Non-positive values select the defaults.
func NewThreadPool(maxSize int, maxSteps uint64) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 8
	}
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	return &ThreadPool{
		threads:  make([]*starlark.Thread, 0, maxSize),
		maxSize:  maxSize,
		maxSteps: maxSteps,
	}
}

// Get returns a thread named after the script it runs. print() output goes
// to onPrint, which may be nil.
func (p *ThreadPool) Get(name string, onPrint func(msg string)) *starlark.Thread {
	p.mu.Lock()
	var thread *starlark.Thread
	if n := len(p.threads); n > 0 {
		thread = p.threads[n-1]
		p.threads = p.threads[:n-1]
	}
	p.mu.Unlock()

	if thread == nil {
		thread = &starlark.Thread{}
	}
	thread.Name = name
	thread.Steps = 0
	thread.Load = rejectLoad
	thread.SetMaxExecutionSteps(p.maxSteps)
	if onPrint != nil {
		thread.Print = func(_ *starlark.Thread, msg string) { onPrint(msg) }
	}
	return thread
}

// Put returns a thread to the pool. Cancelled threads and threads beyond
// the pool size are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	if thread == nil || thread.Steps >= p.maxSteps {
		return
	}
	thread.Name = ""
	thread.Print = nil

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.threads) < p.maxSize {
		p.threads = append(p.threads, thread)
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}

func rejectLoad(_ *starlark.Thread, module string) (starlark.StringDict, error) {
	return nil, fmt.Errorf("load(%q): configuration scripts cannot load modules; use extends instead", module)
}
