package itch

import (
	"fmt"
	"net"
)

// UDPSender wraps a connected UDP socket as a MoldUDP64Framer send
// callback, the Go-native equivalent of the original's
// MoldUDP64Framer::SendCallback wired to a raw socket.
type UDPSender struct {
	conn *net.UDPConn
}

// DialUDPSender resolves addr ("host:port") and connects a UDP socket.
func DialUDPSender(addr string) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("itch: cannot resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("itch: cannot dial %s: %w", addr, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send implements the framer's send callback, best-effort per spec's
// event-sink failure model: write errors are swallowed since a dropped
// MoldUDP64 packet is valid protocol behavior, recovered by sequence gap
// detection on the receiver.
func (s *UDPSender) Send(packet []byte) {
	_, _ = s.conn.Write(packet)
}

// Close closes the underlying socket.
func (s *UDPSender) Close() error { return s.conn.Close() }
