package scanner

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// State classifies the outcome of a single port probe.
type State string

const (
	StateOpen   State = "Open"
	StateClosed State = "Closed"
	StateError  State = "Error"
)

// Outcome is the result of probing one port. Exactly one Outcome is
// produced per requested port and it is never mutated after creation.
type Outcome struct {
	Port    int    `json:"port"`
	State   State  `json:"state"`
	Service string `json:"service,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Dialer abstracts the TCP connect so tests can substitute a fake.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

// timeoutDialer is the production Dialer: one connect bounded by a
// per-probe timeout.
type timeoutDialer struct {
	timeout time.Duration
}

func (d timeoutDialer) Dial(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, d.timeout)
}

// serviceNames maps well-known ports to their conventional service name.
// Loaded once at process start and read-only thereafter, so it is shared
// across workers without synchronization.
var serviceNames = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP-Alt",
	8443:  "HTTPS-Alt",
	27017: "MongoDB",
}

// ServiceName returns the conventional name for a well-known port, or
// "Unknown" when the port is not in the table.
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "Unknown"
}

// Probe attempts a single TCP connect to host:port bounded by timeout and
// classifies the result. A successful connect is Open; a refusal or a
// timeout is Closed (no distinction is made); resolution failures and
// unexpected system errors are Error. The connection is always released.
// Probe never retries.
func Probe(host string, port int, timeout time.Duration) Outcome {
	return probe(timeoutDialer{timeout: timeout}, host, port)
}

func probe(dialer Dialer, host string, port int) Outcome {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := dialer.Dial("tcp", address)
	if err != nil {
		return classifyDialError(port, err)
	}
	_ = conn.Close()

	return Outcome{Port: port, State: StateOpen, Service: ServiceName(port)}
}

// classifyDialError maps a connect failure onto the outcome taxonomy.
// Refusal and timeout both collapse to Closed; everything else, including
// host resolution failures, surfaces as Error with the underlying message.
func classifyDialError(port int, err error) Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Port: port, State: StateClosed}
	}

	if isConnectionRefused(err) {
		return Outcome{Port: port, State: StateClosed}
	}

	return Outcome{Port: port, State: StateError, Err: err.Error()}
}

// isConnectionRefused checks if the error is a connection refused error.
// A refusal (RST packet) means the port is reachable but not listening.
func isConnectionRefused(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// Windows reports refusal with different wording.
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "actively refused")
}
