package consoles

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/reusee/tvk/nets"
)

type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func Dial(ctx context.Context, dialer nets.Dialer, addr string) (*Client, error) {
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial console %s: %w", addr, err)
	}
	if _, err := conn.Write([]byte(Magic)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxChunkSize)
	return &Client{
		conn:    conn,
		scanner: scanner,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

var ErrMultiline = errors.New("console chunks must be a single line")

// RemoteError is a chunk failure reported by the server.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Exec sends chunk and waits for the reply.
func (c *Client) Exec(ctx context.Context, chunk string) error {
	if strings.ContainsAny(chunk, "\r\n") {
		return ErrMultiline
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	if _, err := fmt.Fprintf(c.conn, "%s\n", chunk); err != nil {
		return err
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return err
		}
		return io.ErrUnexpectedEOF
	}
	reply := c.scanner.Text()
	if reply == "ok" {
		return nil
	}
	if msg, ok := strings.CutPrefix(reply, "error: "); ok {
		return &RemoteError{
			Message: msg,
		}
	}
	return fmt.Errorf("unexpected reply: %q", reply)
}

// ExecLines sends each non-blank line of src as its own chunk, stopping at the first failure.
func ExecLines(ctx context.Context, client *Client, src string) error {
	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if err := client.Exec(ctx, line); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}
