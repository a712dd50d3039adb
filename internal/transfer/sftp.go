package transfer

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type SFTPSink struct {
	ssh    *ssh.Client
	client *sftp.Client
}

var ErrNoKnownHosts = errors.New("sftp requires a known_hosts file")

// DialSFTP connects with password auth. The server key must be listed in
// cfg.KnownHosts.
func DialSFTP(ctx context.Context, cfg Config) (*SFTPSink, error) {
	if cfg.KnownHosts == "" {
		return nil, ErrNoKnownHosts
	}
	hostKey, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("load known hosts: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: hostKey,
		Timeout:         cfg.Timeout,
	}

	type dialed struct {
		c   *ssh.Client
		err error
	}
	ch := make(chan dialed, 1)
	go func() {
		c, err := ssh.Dial("tcp", cfg.addr(22), clientCfg)
		ch <- dialed{c, err}
	}()

	var conn *ssh.Client
	select {
	case <-ctx.Done():
		go func() {
			if d := <-ch; d.c != nil {
				_ = d.c.Close()
			}
		}()
		return nil, fmt.Errorf("ssh dial: %w", ctx.Err())
	case d := <-ch:
		if d.err != nil {
			return nil, fmt.Errorf("ssh dial: %w", d.err)
		}
		conn = d.c
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sftp session: %w", err)
	}
	return &SFTPSink{ssh: conn, client: client}, nil
}

func (s *SFTPSink) Upload(_ context.Context, content []byte, remotePath string) error {
	if err := s.client.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("sftp mkdir: %w", err)
	}
	f, err := s.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp create: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("sftp write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("sftp close file: %w", err)
	}
	return nil
}

func (s *SFTPSink) Close() error {
	err := s.client.Close()
	if cerr := s.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}
