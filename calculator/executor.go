package calculator

import (
	"sync"
	"time"
)

// 基于切片任务分配的 worker 池
// 每次 dispatch 把 [0, total) 切成若干任务，全部完成后返回，相当于一个时间步内的屏障
type executor struct {
	workers      int
	dispatchChan chan task
	doneSoFar    chan error

	mu   sync.Mutex // 同一时刻只允许一次 dispatch
	once sync.Once
}

type task struct {
	start int
	end   int
	fn    func(start, end int) error
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	e := &executor{
		workers:      workers,
		dispatchChan: make(chan task, 2*workers),
		doneSoFar:    make(chan error, 2*workers),
	}
	for i := 0; i < workers; i++ {
		go e.work()
	}
	return e
}

func (e *executor) work() {
	for t := range e.dispatchChan {
		e.doneSoFar <- t.fn(t.start, t.end)
	}
}

// 任务数不超过 2*workers，保证发送不会阻塞
func (e *executor) dispatch(total int, fn func(start, end int) error) (time.Duration, error) {
	if total <= 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	totalTasks := 2 * e.workers
	if totalTasks > total {
		totalTasks = total
	}
	taskLen, remainder := total/totalTasks, total%totalTasks
	first := 0
	for i := 0; i < totalTasks; i++ {
		last := first + taskLen
		if i < remainder {
			last++
		}
		e.dispatchChan <- task{start: first, end: last, fn: fn}
		first = last
	}

	var err error
	for i := 0; i < totalTasks; i++ {
		if taskErr := <-e.doneSoFar; taskErr != nil && err == nil {
			err = taskErr
		}
	}
	return time.Since(start), err
}

func (e *executor) close() {
	e.once.Do(func() {
		close(e.dispatchChan)
	})
}
