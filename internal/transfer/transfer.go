package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"
)

var ErrUnknownKind = errors.New("unknown transfer kind")

// Sink is a connected file drop.
type Sink interface {
	Upload(ctx context.Context, content []byte, remotePath string) error
	Close() error
}

// DialFunc opens a Sink.
type DialFunc func(ctx context.Context) (Sink, error)

type Config struct {
	Kind       string
	Host       string
	Port       int
	User       string
	Password   string
	KnownHosts string
	Dir        string
	Timeout    time.Duration
}

// NewDialer picks the transport for cfg.Kind: ftp, sftp or dir.
func NewDialer(cfg Config) (DialFunc, error) {
	switch cfg.Kind {
	case "ftp":
		return func(ctx context.Context) (Sink, error) { return DialFTP(ctx, cfg) }, nil
	case "sftp":
		return func(ctx context.Context) (Sink, error) { return DialSFTP(ctx, cfg) }, nil
	case "dir":
		return func(context.Context) (Sink, error) { return NewDirSink(cfg.Dir), nil }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

func (c Config) addr(defaultPort int) string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Lazy connects on the first upload and reuses the connection afterwards.
// Uploads are serialized; Close never fails.
type Lazy struct {
	dial DialFunc

	mu   sync.Mutex
	sink Sink
}

func NewLazy(dial DialFunc) *Lazy {
	return &Lazy{dial: dial}
}

func (l *Lazy) Upload(ctx context.Context, content []byte, remotePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sink == nil {
		sink, err := l.dial(ctx)
		if err != nil {
			return fmt.Errorf("connect file drop: %w", err)
		}
		l.sink = sink
	}
	if err := l.sink.Upload(ctx, content, remotePath); err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	return nil
}

// Close releases the connection if one was opened. Teardown errors are
// logged and dropped, a server that already hung up is not a failure.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sink == nil {
		return nil
	}
	if err := l.sink.Close(); err != nil {
		slog.Warn("failed to close file drop connection", "error", err)
	}
	l.sink = nil
	return nil
}
