package transfer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jlaffaye/ftp"
)

type FTPSink struct {
	conn *ftp.ServerConn
}

func DialFTP(ctx context.Context, cfg Config) (*FTPSink, error) {
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if cfg.Timeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(cfg.Timeout))
	}
	conn, err := ftp.Dial(cfg.addr(21), opts...)
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	return &FTPSink{conn: conn}, nil
}

func (s *FTPSink) Upload(_ context.Context, content []byte, remotePath string) error {
	s.makeDirs(path.Dir(remotePath))
	if err := s.conn.Stor(remotePath, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("ftp stor: %w", err)
	}
	return nil
}

// makeDirs creates every segment of dir. MKD on an existing directory fails
// on most servers, so errors are ignored and Stor reports real problems.
func (s *FTPSink) makeDirs(dir string) {
	cur := ""
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part == "" {
			continue
		}
		cur += "/" + part
		_ = s.conn.MakeDir(cur)
	}
}

func (s *FTPSink) Close() error {
	return s.conn.Quit()
}
