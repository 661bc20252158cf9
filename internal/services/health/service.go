package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports process and database health.
type Service struct {
	DB      Pinger
	Timeout time.Duration
}

// NewService constructs a health service. db may be nil when the process
// runs on in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{DB: db, Timeout: 2 * time.Second}
}

// Status is the /health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Check pings the database if one is configured.
func (s *Service) Check(ctx context.Context) Status {
	if s.DB == nil {
		return Status{OK: true, Database: "memory"}
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return Status{OK: false, Database: "down"}
	}
	return Status{OK: true, Database: "up"}
}
