package smtp

import (
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/services"
)

// Security limits
const (
	DefaultMaxMessageSize = 1024 * 1024 // 1 MB
	DefaultMaxRecipients  = 50
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// Backend implements the go-smtp Backend interface on top of the messaging
// facade
type Backend struct {
	messenger services.Messenger
	domain    string
	logger    *slog.Logger
	security  *logger.SecurityLogger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Messenger services.Messenger
	// Domain restricts accepted recipients; empty accepts every domain
	Domain   string
	Logger   *slog.Logger
	Security *logger.SecurityLogger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	return &Backend{
		messenger: cfg.Messenger,
		domain:    strings.ToLower(cfg.Domain),
		logger:    cfg.Logger,
		security:  cfg.Security,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	session := NewSession(b)
	if c != nil {
		session.remoteAddr = c.Conn().RemoteAddr().String()
		if b.logger != nil {
			b.logger.Info("new SMTP connection", slog.String("remote_addr", session.remoteAddr))
		}
	}
	return session, nil
}

func (b *Backend) acceptsDomain(domain string) bool {
	return b.domain == "" || b.domain == domain
}

// ServerConfig holds security configuration for the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	// Set message size limit
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	// Set recipient limit
	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	// Set timeouts
	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	// No authentication is offered, so plain-text auth stays off
	s.AllowInsecureAuth = false

	// Set max line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}
