package changefeed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
)

// Server accepts raw TCP change-feed subscribers. A client may send one
// register line {"user_id":"..."} to scope its subscription; anything
// else it sends is ignored.
type Server struct {
	Addr string
	Hub  *Hub

	ln net.Listener
}

type registerLine struct {
	UserID string `json:"user_id"`
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("[changefeed] tcp listening on %s", s.Addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		s.Hub.Add(conn, "")
		s.welcome(conn)
		log.Printf("[changefeed] tcp client connected: %s", conn.RemoteAddr())

		go func(c net.Conn) {
			defer func() {
				s.Hub.Remove(c)
				log.Printf("[changefeed] tcp client disconnected: %s", c.RemoteAddr())
			}()

			sc := bufio.NewScanner(c)
			for sc.Scan() {
				var reg registerLine
				if err := json.Unmarshal(sc.Bytes(), &reg); err == nil && reg.UserID != "" {
					s.Hub.Add(c, reg.UserID)
				}
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

func (s *Server) welcome(conn net.Conn) {
	stats := s.Hub.Stats()
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"clients\":%d}\n", stats.TCPClients)
	_, _ = conn.Write([]byte(msg))
}
