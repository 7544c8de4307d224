package infra

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewTransport returns an *http.Transport with separate connect and read
// timeouts. connect bounds dialing and the TLS handshake; read bounds every
// individual read from the connection, including the wait for headers.
func NewTransport(connect, read time.Duration) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = dialContext(connect, read)
	t.TLSHandshakeTimeout = connect
	t.ResponseHeaderTimeout = read
	return t
}

func dialContext(connect, read time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &deadlineConn{Conn: conn, read: read}, nil
	}
}

// deadlineConn refreshes the read deadline before every Read, so a stalled
// server fails once no byte arrives within the read timeout.
type deadlineConn struct {
	net.Conn
	read time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if c.read > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(b)
}
