package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"plasmaheat/model"
	"plasmaheat/simulation"
)

// 请求消息类型
const (
	MsgEnv      = "env"
	MsgStart    = "start"
	MsgPause    = "pause"
	MsgResume   = "resume"
	MsgCancel   = "cancel"
	MsgProgress = "progress"
	MsgField    = "field"
	MsgEncoded  = "fieldEncoded"
	MsgResults  = "results"
)

// 响应消息类型，progress / field / results 与请求同名
const (
	ReplyEnvSet    = "envSet"
	ReplyStarted   = "started"
	ReplyPaused    = "paused"
	ReplyResumed   = "resumed"
	ReplyCancelled = "cancelled"
	ReplyError     = "error"
)

var pushInterval = 200 * time.Millisecond

// Hub 对应一个 websocket 连接，负责一次仿真的控制与推送
// 只有 handleResponse 一个 goroutine 写连接
type Hub struct {
	conn *websocket.Conn

	mu  sync.Mutex
	cfg model.SimulationConfig
	sim *simulation.Simulation

	// request
	msg chan model.Msg
	// response
	reply chan model.Msg

	done      chan struct{}
	closeOnce sync.Once
}

func NewHub(conn *websocket.Conn, cfg model.SimulationConfig) *Hub {
	return &Hub{
		conn:  conn,
		cfg:   cfg,
		msg:   make(chan model.Msg, 10),
		reply: make(chan model.Msg, 16),
		done:  make(chan struct{}),
	}
}

func (h *Hub) close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) send(reply model.Msg) {
	select {
	case h.reply <- reply:
	case <-h.done:
	}
}

func (h *Hub) sendJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.send(model.Msg{Type: ReplyError, Content: err.Error()})
		return
	}
	h.send(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Warn("消息发送失败")
				h.close()
				return
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			h.dispatch(msg)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) dispatch(msg model.Msg) {
	switch msg.Type {
	case MsgEnv:
		h.setEnv(msg.Content)
	case MsgStart:
		h.start()
	case MsgPause:
		h.control(ReplyPaused, (*simulation.Simulation).Pause)
	case MsgResume:
		h.control(ReplyResumed, (*simulation.Simulation).Resume)
	case MsgCancel:
		h.control(ReplyCancelled, func(s *simulation.Simulation) error {
			s.Cancel()
			return nil
		})
	case MsgProgress:
		if sim := h.current(); sim != nil {
			h.sendJSON(MsgProgress, sim.Progress())
		} else {
			h.sendJSON(MsgProgress, model.Progress{Status: model.NotStarted})
		}
	case MsgField:
		if sim := h.current(); sim != nil {
			h.sendJSON(MsgField, newFieldData(sim))
		} else {
			h.send(model.Msg{Type: ReplyError, Content: "simulation not started"})
		}
	case MsgEncoded:
		if sim := h.current(); sim != nil {
			f := sim.CurrentField()
			h.sendJSON(MsgEncoded, encodedField{Nr: f.Nr, Nz: f.Nz, Time: sim.Progress().CurrentTime, Encoder: encode(f.T)})
		} else {
			h.send(model.Msg{Type: ReplyError, Content: "simulation not started"})
		}
	case MsgResults:
		if sim := h.current(); sim != nil {
			h.sendJSON(MsgResults, sim.Results())
		} else {
			h.send(model.Msg{Type: ReplyError, Content: "simulation not started"})
		}
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		h.send(model.Msg{Type: ReplyError, Content: "no such type: " + msg.Type})
	}
}

// env 消息的内容为 JSON 格式的仿真配置，只覆盖给出的字段
func (h *Hub) setEnv(content string) {
	h.mu.Lock()
	cfg := h.cfg
	h.mu.Unlock()
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		h.send(model.Msg{Type: ReplyError, Content: err.Error()})
		return
	}
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	h.send(model.Msg{Type: ReplyEnvSet, Content: "env is set"})
}

func (h *Hub) start() {
	h.mu.Lock()
	if h.sim != nil && !h.sim.Status().Terminal() {
		h.mu.Unlock()
		h.send(model.Msg{Type: ReplyError, Content: "simulation already running"})
		return
	}
	cfg := h.cfg
	h.mu.Unlock()

	sim, err := simulation.New(cfg)
	if err != nil {
		h.send(model.Msg{Type: ReplyError, Content: err.Error()})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-h.done:
			cancel()
		case <-sim.Done():
			cancel()
		}
	}()
	if err := sim.Start(ctx); err != nil {
		cancel()
		h.send(model.Msg{Type: ReplyError, Content: err.Error()})
		return
	}
	h.mu.Lock()
	h.sim = sim
	h.mu.Unlock()
	h.send(model.Msg{Type: ReplyStarted})
	go h.push(sim)
}

func (h *Hub) control(reply string, f func(*simulation.Simulation) error) {
	sim := h.current()
	if sim == nil {
		h.send(model.Msg{Type: ReplyError, Content: "simulation not started"})
		return
	}
	if err := f(sim); err != nil {
		h.send(model.Msg{Type: ReplyError, Content: err.Error()})
		return
	}
	h.send(model.Msg{Type: reply})
}

func (h *Hub) current() *simulation.Simulation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sim
}

// 周期性推送进度，仿真结束后推送最终进度与结果
func (h *Hub) push(sim *simulation.Simulation) {
	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()
	dirty := false
	for {
		select {
		case <-sim.Updates():
			dirty = true
		case <-ticker.C:
			if dirty {
				h.sendJSON(MsgProgress, sim.Progress())
				dirty = false
			}
		case <-sim.Done():
			h.sendJSON(MsgProgress, sim.Progress())
			h.sendJSON(MsgResults, sim.Results())
			return
		case <-h.done:
			return
		}
	}
}

// 当前温度场，[z][r]
type fieldData struct {
	Nr          int         `json:"nr"`
	Nz          int         `json:"nz"`
	R           []float64   `json:"r"`
	Z           []float64   `json:"z"`
	Time        float64     `json:"time"`
	Temperature [][]float64 `json:"temperature"`
	Fraction    [][]float64 `json:"fraction"`
}

func newFieldData(sim *simulation.Simulation) fieldData {
	f := sim.CurrentField()
	m := sim.Mesh()
	return fieldData{
		Nr:          f.Nr,
		Nz:          f.Nz,
		R:           m.RCoords(),
		Z:           m.ZCoords(),
		Time:        sim.Progress().CurrentTime,
		Temperature: f.Rows(),
		Fraction:    f.FractionRows(),
	}
}
