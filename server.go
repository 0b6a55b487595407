package main

// Server maps game ids to their hosts. The map is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Server struct {
	hosts map[string]*Host
}

func NewServer() *Server {
	return &Server{hosts: make(map[string]*Host)}
}

func (s *Server) RegisterHost(h *Host) {
	s.hosts[h.gameID] = h
}

func (s *Server) GetHost(gameID string) (*Host, bool) {
	h, exists := s.hosts[gameID]
	return h, exists
}

// Start launches one event loop per host.
func (s *Server) Start() {
	for _, h := range s.hosts {
		go h.Run()
	}
}
