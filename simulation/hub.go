package simulation

import "sync"

// 运行控制：暂停、继续、取消，只在两个时间步之间生效
type hub struct {
	mu        sync.Mutex
	cond      *sync.Cond
	paused    bool
	cancelled bool

	// 每完成一个时间步推送一次信号，消费者来不及处理时丢弃
	periodCalcResult chan struct{}
}

func newHub() *hub {
	h := &hub{periodCalcResult: make(chan struct{}, 1)}
	h.cond = sync.NewCond(&h.mu)
	return h
}

func (h *hub) pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *hub) resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
	h.cond.Broadcast()
}

func (h *hub) cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
	h.cond.Broadcast()
}

// 暂停期间阻塞，onPause 在进入暂停时调用一次
// 返回 true 表示已取消
func (h *hub) checkpoint(onPause, onResume func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused && !h.cancelled {
		onPause()
		for h.paused && !h.cancelled {
			h.cond.Wait()
		}
		if !h.cancelled {
			onResume()
		}
	}
	return h.cancelled
}

func (h *hub) pushSignal() {
	select {
	case h.periodCalcResult <- struct{}{}:
	default:
	}
}
