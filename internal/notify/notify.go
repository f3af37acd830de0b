package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"

	"offersmonkey/pkg/models"
)

const (
	RegisterMessageType  = "register"
	NewOffersMessageType = "new_offers"
)

// RegisterMessage is sent by a client to opt into push notifications.
type RegisterMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// OfferSummary is the slim per-offer payload carried in a push.
type OfferSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Store   string `json:"store"`
	Savings string `json:"savings,omitempty"`
}

// NewOffersMessage announces freshly synced offers.
type NewOffersMessage struct {
	Type  string         `json:"type"`
	Count int            `json:"count"`
	Top   []OfferSummary `json:"top,omitempty"`
}

type Client struct {
	UserID string
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(userID string, addr *net.UDPAddr) {
	if userID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

// Server listens for UDP register messages and fans pushes out to every
// registered client.
type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger
	conn     *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.logger.Printf("[notify] udp listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("[notify] invalid message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.UserID, addr)
		s.logger.Printf("[notify] registered client %s (%s)", msg.UserID, addr)
	}
}

// Close stops the listener; Run returns with the read error.
func (s *Server) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// BroadcastNewOffers pushes a new-offers announcement to registered
// clients. top is trimmed to at most three offers to keep the datagram
// small.
func (s *Server) BroadcastNewOffers(count int, top []models.Offer) {
	if s.conn == nil {
		s.logger.Printf("[notify] server not running, dropping broadcast")
		return
	}
	if len(top) > 3 {
		top = top[:3]
	}
	summaries := make([]OfferSummary, 0, len(top))
	for _, o := range top {
		summaries = append(summaries, OfferSummary{
			ID:      o.ID,
			Title:   o.Title,
			Store:   o.Store,
			Savings: o.Savings,
		})
	}

	payload, err := json.Marshal(NewOffersMessage{
		Type:  NewOffersMessageType,
		Count: count,
		Top:   summaries,
	})
	if err != nil {
		s.logger.Printf("[notify] marshal broadcast: %v", err)
		return
	}

	for _, client := range s.registry.Snapshot() {
		s.sendWithRetry(client, payload)
	}
}

func (s *Server) sendWithRetry(client Client, payload []byte) {
	if err := s.sendOnce(client, payload); err == nil {
		return
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("[notify] failed to notify %s at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
	}
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := s.conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
