package server

import "ChordDHT/internal/logger"

// Option is a functional option for configuring the Server.
type Option func(*Server)

// WithLogger injects a custom logger into the Server.
func WithLogger(lgr logger.Logger) Option {
	return func(s *Server) {
		if lgr != nil {
			s.lgr = lgr
		}
	}
}
