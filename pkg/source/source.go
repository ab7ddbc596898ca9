// Package source loads CLI payloads from local paths or smb:// locations.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"docnorm/pkg/failure"
	"docnorm/pkg/smbclient"
)

// Payload is a loaded document.
type Payload struct {
	Name string
	Data []byte
}

type Loader struct {
	// Creds apply to smb:// locations that carry no user info of their own.
	Creds smbclient.Credentials
	// MaxBytes rejects larger payloads. Zero means unlimited.
	MaxBytes int64

	Log zerolog.Logger
}

// SMBLocation is a parsed smb://[user[:pass]@]host[:port]/share/path location.
type SMBLocation struct {
	Host  string
	Share string
	Path  string
	User  *url.Userinfo
}

// ParseSMB parses an smb:// location. The path inside the share may use
// forward slashes; go-smb2 normalizes them.
func ParseSMB(location string) (SMBLocation, error) {
	u, err := url.Parse(location)
	if err != nil {
		return SMBLocation{}, err
	}
	if !strings.EqualFold(u.Scheme, "smb") {
		return SMBLocation{}, fmt.Errorf("not an smb location: %q", location)
	}
	if u.Host == "" {
		return SMBLocation{}, fmt.Errorf("missing host in %q", location)
	}

	parts := strings.SplitN(strings.TrimPrefix(path.Clean("/"+u.Path), "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return SMBLocation{}, fmt.Errorf("expected smb://host/share/path, got %q", location)
	}
	return SMBLocation{Host: u.Host, Share: parts[0], Path: parts[1], User: u.User}, nil
}

func IsSMB(location string) bool {
	return strings.HasPrefix(strings.ToLower(location), "smb://")
}

// Load reads location. Failures are request errors: no extractor has run yet.
func (l *Loader) Load(ctx context.Context, location string) (Payload, error) {
	var (
		data []byte
		err  error
	)
	if IsSMB(location) {
		data, err = l.loadSMB(ctx, location)
	} else {
		data, err = l.loadLocal(location)
	}
	if err != nil {
		return Payload{}, failure.New(failure.KindRequest, fmt.Sprintf("cannot read %s", location), err)
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return Payload{}, failure.Newf(failure.KindRequest, "%s is larger than %d bytes", location, l.MaxBytes)
	}

	l.Log.Debug().Str("location", location).Int("bytes", len(data)).Msg("payload loaded")
	return Payload{Name: location, Data: data}, nil
}

func (l *Loader) loadLocal(name string) ([]byte, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return nil, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.MaxBytes)
	}
	return os.ReadFile(name)
}

func (l *Loader) loadSMB(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseSMB(location)
	if err != nil {
		return nil, err
	}

	creds := l.Creds
	if loc.User != nil {
		creds.User = loc.User.Username()
		if pass, ok := loc.User.Password(); ok {
			creds.Password = pass
			creds.Hash = ""
		}
	}

	l.Log.Debug().Str("host", loc.Host).Str("share", loc.Share).Str("path", loc.Path).Msg("connecting to SMB share")
	session, err := smbclient.NewSession(ctx, loc.Host, creds)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", loc.Host, err)
	}
	defer session.Close()

	return session.ReadFile(ctx, loc.Share, loc.Path)
}
