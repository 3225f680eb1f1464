package server

// Client abstracts the connection layer for both telnet and WebSocket
// connections so a session can run over either.
type Client interface {
	// ReadLine blocks until a complete line is received (without newline).
	ReadLine() (string, error)

	// WriteLine sends one message. Telnet terminates it with a newline,
	// WebSocket sends it as a single text frame.
	WriteLine(message string) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}
