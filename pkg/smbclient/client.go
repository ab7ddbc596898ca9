package smbclient

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/hirochachacha/go-smb2"
)

type Session struct {
	Session *smb2.Session
	Conn    net.Conn
}

// NewSession dials host (port 445 unless given) and authenticates.
func NewSession(ctx context.Context, host string, creds Credentials) (s *Session, err error) {
	addr := host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		addr = net.JoinHostPort(strings.Trim(host, "[]"), "445")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in SMB dial: %v", r)
			conn.Close()
		}
	}()

	initiator, err := creds.Initiator()
	if err != nil {
		conn.Close()
		return nil, err
	}

	dialer := &smb2.Dialer{Initiator: initiator}
	session, err := dialer.DialContext(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Session{Session: session, Conn: conn}, nil
}

// ReadFile mounts share and reads name from it.
func (s *Session) ReadFile(ctx context.Context, share, name string) ([]byte, error) {
	mount, err := s.Session.WithContext(ctx).Mount(share)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", share, err)
	}
	defer mount.Umount()

	return mount.WithContext(ctx).ReadFile(name)
}

func (s *Session) Close() {
	if s.Session != nil {
		s.Session.Logoff()
	}
	if s.Conn != nil {
		s.Conn.Close()
	}
}
