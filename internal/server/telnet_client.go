package server

import (
	"bufio"
	"net"
	"strings"
)

// TelnetClient wraps a raw TCP connection. Lines are newline terminated in
// both directions.
type TelnetClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

// NewTelnetClient creates a new TelnetClient from a TCP connection.
func NewTelnetClient(conn net.Conn, maxLine int) *TelnetClient {
	scanner := bufio.NewScanner(conn)
	if maxLine > 0 {
		scanner.Buffer(make([]byte, 0, 256), maxLine)
	}
	return &TelnetClient{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
	}
}

// ReadLine reads the next non-blank line. Carriage returns sent by telnet
// clients are dropped.
func (c *TelnetClient) ReadLine() (string, error) {
	for c.scanner.Scan() {
		if line := strings.TrimSpace(c.scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	// Scanner finished without error means EOF/connection closed
	return "", net.ErrClosed
}

// WriteLine writes a message followed by a newline to the client.
func (c *TelnetClient) WriteLine(message string) error {
	if _, err := c.writer.WriteString(message); err != nil {
		return err
	}
	if !strings.HasSuffix(message, "\n") {
		if err := c.writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return c.writer.Flush()
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *TelnetClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
