package sftp

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/net/proxy"

	"github.com/driftfs/driftfs/internal/domain"
)

// dialTimeout bounds the TCP and SSH handshake, not the file transfer.
const dialTimeout = 30 * time.Second

// session is one authenticated connection to the remote filesystem,
// scoped to a single operation. It is owned exclusively by the operation
// that opened it and must be closed on every exit path.
type session interface {
	Stat(path string) (os.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
	MkdirAll(path string) error
	ReadDir(path string) ([]os.FileInfo, error)
	Rename(oldPath, newPath string) error
	Remove(path string) error
	Close() error
}

// sftpSession backs session with an SFTP subsystem over SSH.
type sftpSession struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (s *sftpSession) Stat(path string) (os.FileInfo, error) { return s.sftp.Stat(path) }
func (s *sftpSession) MkdirAll(path string) error            { return s.sftp.MkdirAll(path) }
func (s *sftpSession) Rename(oldPath, newPath string) error  { return s.sftp.Rename(oldPath, newPath) }
func (s *sftpSession) Remove(path string) error              { return s.sftp.Remove(path) }

func (s *sftpSession) Open(path string) (io.ReadCloser, error) {
	return s.sftp.Open(path)
}

func (s *sftpSession) Create(path string) (io.WriteCloser, error) {
	return s.sftp.Create(path)
}

func (s *sftpSession) ReadDir(path string) ([]os.FileInfo, error) {
	return s.sftp.ReadDir(path)
}

func (s *sftpSession) Close() error {
	err := s.sftp.Close()
	if cerr := s.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}

// dial opens a fresh authenticated session against the target. Sessions
// are never pooled; every operation pays for its own connection.
func (t *Target) dial(ctx context.Context) (session, error) {
	conn, err := t.dialConn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrNetworkError, t.Addr(), err)
	}

	config, err := t.sshConfig()
	if err != nil {
		conn.Close()
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, t.Addr(), config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", t.Addr(), err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	sc, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("sftp subsystem on %s: %w", t.Addr(), err)
	}

	return &sftpSession{ssh: client, sftp: sc}, nil
}

// dialConn establishes the TCP connection, directly or through the proxy.
func (t *Target) dialConn(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	direct := &net.Dialer{}
	p := t.Proxy
	if p == nil || p.Kind == ProxyNone {
		return direct.DialContext(ctx, "tcp", t.Addr())
	}

	proxyAddr := fmt.Sprintf("%s:%d", p.Host, p.Port)
	switch p.Kind {
	case ProxySOCKS5:
		var auth *proxy.Auth
		if p.Username != "" {
			auth = &proxy.Auth{User: p.Username, Password: p.Password}
		}
		d, err := proxy.SOCKS5("tcp", proxyAddr, auth, direct)
		if err != nil {
			return nil, err
		}
		return d.(proxy.ContextDialer).DialContext(ctx, "tcp", t.Addr())
	case ProxyHTTP:
		return dialHTTPConnect(ctx, direct, proxyAddr, p, t.Addr())
	default:
		// x/net/proxy has no SOCKS4 support
		return nil, fmt.Errorf("%w: %s", domain.ErrProxyUnsupported, p.Kind)
	}
}

// dialHTTPConnect tunnels through an HTTP proxy with a CONNECT request.
func dialHTTPConnect(ctx context.Context, d *net.Dialer, proxyAddr string, p *Proxy, target string) (net.Conn, error) {
	conn, err := d.DialContext(ctx, "tcp", proxyAddr)
	if err != nil {
		return nil, err
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: target},
		Host:   target,
		Header: make(http.Header),
	}
	if p.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(p.Username + ":" + p.Password))
		req.Header.Set("Proxy-Authorization", "Basic "+cred)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("proxy CONNECT to %s: %s", target, resp.Status)
	}

	return conn, nil
}

// sshConfig converts the resolved authentication chain into an SSH client
// configuration. The order of the chain is preserved.
func (t *Target) sshConfig() (*ssh.ClientConfig, error) {
	auth := make([]ssh.AuthMethod, 0, len(t.Auth))
	for _, m := range t.Auth {
		switch m.Kind {
		case AuthPassword:
			auth = append(auth, ssh.Password(m.Password))
		case AuthPrivateKey:
			var signer ssh.Signer
			var err error
			if m.Passphrase != "" {
				signer, err = ssh.ParsePrivateKeyWithPassphrase(m.Key, []byte(m.Passphrase))
			} else {
				signer, err = ssh.ParsePrivateKey(m.Key)
			}
			if err != nil {
				return nil, fmt.Errorf("parse private key: %w", err)
			}
			auth = append(auth, ssh.PublicKeys(signer))
		case AuthNone:
			// no method appended; the server may still accept "none"
		}
	}

	return &ssh.ClientConfig{
		User: t.Username,
		Auth: auth,
		// The descriptor carries no host key material to pin against.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}, nil
}
