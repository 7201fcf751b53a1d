package itch

import "encoding/binary"

const (
	MoldUDP64HeaderSize = 20
	MoldUDP64MaxPayload = 1400 // leaves room for IP + UDP headers
)

// MoldUDP64Framer frames ITCH messages into MoldUDP64 packets, grounded
// on original_source/src/itch/moldudp64.cpp. Each packet is a 20-byte
// header (10-char session, 8-byte sequence number, 2-byte message count)
// followed by length-prefixed message blocks (2-byte big-endian length +
// payload). Auto-flushes when the accumulated payload would approach the
// MTU limit.
type MoldUDP64Framer struct {
	session        [10]byte
	sequenceNumber uint64
	messageCount   uint16
	buffer         []byte
	sendFn         func([]byte)
}

// NewMoldUDP64Framer builds a framer for sessionID, truncated/padded to
// 10 characters. Sequence numbers start at 1, partitioning [1,∞).
func NewMoldUDP64Framer(sessionID string) *MoldUDP64Framer {
	var sess [10]byte
	for i := range sess {
		sess[i] = ' '
	}
	copy(sess[:], sessionID)
	return &MoldUDP64Framer{session: sess, sequenceNumber: 1}
}

// SetSendFunc sets the callback invoked with each complete packet.
func (f *MoldUDP64Framer) SetSendFunc(send func([]byte)) { f.sendFn = send }

// NextSequenceNumber returns the sequence number the next flushed packet
// will carry.
func (f *MoldUDP64Framer) NextSequenceNumber() uint64 { return f.sequenceNumber }

// PendingMessageCount returns how many messages are buffered unflushed.
func (f *MoldUDP64Framer) PendingMessageCount() uint16 { return f.messageCount }

// AddMessage appends data to the current packet, flushing first via the
// send callback if appending would exceed the MTU limit.
func (f *MoldUDP64Framer) AddMessage(data []byte) {
	blockSize := 2 + len(data)
	if f.messageCount > 0 && MoldUDP64HeaderSize+len(f.buffer)+blockSize > MoldUDP64MaxPayload {
		f.emitPacket()
	}

	var lenPrefix [2]byte
	binary.BigEndian.PutUint16(lenPrefix[:], uint16(len(data)))
	f.buffer = append(f.buffer, lenPrefix[:]...)
	f.buffer = append(f.buffer, data...)
	f.messageCount++
}

// Flush builds and returns the current packet bytes (nil if empty),
// advancing the sequence number by the number of messages flushed.
func (f *MoldUDP64Framer) Flush() []byte {
	if f.messageCount == 0 {
		return nil
	}
	packet := make([]byte, MoldUDP64HeaderSize+len(f.buffer))
	copy(packet[0:10], f.session[:])
	binary.BigEndian.PutUint64(packet[10:18], f.sequenceNumber)
	binary.BigEndian.PutUint16(packet[18:20], f.messageCount)
	copy(packet[MoldUDP64HeaderSize:], f.buffer)

	f.sequenceNumber += uint64(f.messageCount)
	f.messageCount = 0
	f.buffer = f.buffer[:0]
	return packet
}

func (f *MoldUDP64Framer) emitPacket() {
	packet := f.Flush()
	if len(packet) > 0 && f.sendFn != nil {
		f.sendFn(packet)
	}
}
