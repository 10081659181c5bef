package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"plasmaheat/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	base     model.SimulationConfig // 客户端 env 消息在此基础上覆盖
}

func NewServer(addr string, upgrader websocket.Upgrader, base model.SimulationConfig) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		base:     base,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	hub := NewHub(conn, s.base)
	defer hub.close()
	go hub.handleRequest()
	go hub.handleResponse()

	log.WithField("remote", conn.RemoteAddr().String()).Info("客户端已连接")
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithError(err).Info("客户端断开连接")
			return
		}
		select {
		case hub.msg <- msg:
		case <-hub.done:
			return
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("websocket 服务启动")
	return http.ListenAndServe(s.addr, s.Handler())
}
