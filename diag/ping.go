package diag

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// PingResult holds the measured round trip of one ICMP echo.
type PingResult struct {
	Host string        `json:"host"`
	Addr string        `json:"addr"`
	RTT  time.Duration `json:"rtt"`
}

// Ping sends a single ICMP echo request to host and waits up to timeout
// for the reply. It prefers an unprivileged ICMP datagram socket and
// falls back to a raw socket, which needs elevated privileges.
func Ping(ctx context.Context, host string, timeout time.Duration) (*PingResult, error) {
	dst, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	var ip net.IP
	for _, addr := range dst {
		if v4 := addr.IP.To4(); v4 != nil {
			ip = v4
			break
		}
	}
	if ip == nil {
		return nil, fmt.Errorf("no IPv4 address for %s", host)
	}

	conn, dest, err := openEchoSocket(ip)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("neoTUI echo"),
		},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("marshal echo: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	start := time.Now()
	if _, err := conn.WriteTo(wb, dest); err != nil {
		return nil, fmt.Errorf("send echo: %w", err)
	}

	rb := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(rb)
		if err != nil {
			return nil, fmt.Errorf("no reply from %s: %w", host, err)
		}
		rtt := time.Since(start)

		reply, err := icmp.ParseMessage(ipv4.ICMPTypeEcho.Protocol(), rb[:n])
		if err != nil {
			continue
		}
		if reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		return &PingResult{Host: host, Addr: ip.String(), RTT: rtt}, nil
	}
}

// openEchoSocket returns an ICMP socket and the destination address shape
// it expects. The udp4 network gives unprivileged ping on Linux and macOS.
func openEchoSocket(ip net.IP) (*icmp.PacketConn, net.Addr, error) {
	if conn, err := icmp.ListenPacket("udp4", "0.0.0.0"); err == nil {
		return conn, &net.UDPAddr{IP: ip}, nil
	}
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, nil, fmt.Errorf("open icmp socket (try elevated privileges): %w", err)
	}
	return conn, &net.IPAddr{IP: ip}, nil
}
