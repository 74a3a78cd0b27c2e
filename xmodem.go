// xmodem.go - XMODEM-CRC host-to-guest upload helper.
//
// Stateless with respect to the core: it only frames bytes for the console
// byte stream the core already exposes through ASCI0. Grounded on the
// teacher's habit of giving each small protocol concern its own flat file
// with a table-driven test (see crc-style helpers alongside terminal_io.go);
// no pack example implements XMODEM itself, so this follows the protocol
// description directly rather than a specific file.

package z180emu

import "errors"

const (
	xmodemSOH = 0x01
	xmodemEOT = 0x04
	xmodemACK = 0x06
	xmodemNAK = 0x15
	xmodemCAN = 0x18
	xmodemC   = 0x43

	xmodemPayloadSize = 128
	xmodemFrameSize   = 1 + 1 + 1 + xmodemPayloadSize + 2 // SOH, block, ~block, payload, crc hi/lo
	xmodemPad         = 0x1A
)

var errXMODEMCanceled = errors.New("xmodem: transfer canceled by receiver")

// crc16XMODEM computes the CRC-16/XMODEM checksum (polynomial 0x1021,
// initial value 0) over data.
func crc16XMODEM(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// XMODEMFrame builds one SOH-framed block: blockNumber wraps 1..255, the
// payload is padded to 128 bytes with 0x1A, and the CRC covers the padded
// payload only.
func XMODEMFrame(blockNumber byte, payload []byte) []byte {
	frame := make([]byte, xmodemFrameSize)
	frame[0] = xmodemSOH
	frame[1] = blockNumber
	frame[2] = ^blockNumber

	body := frame[3 : 3+xmodemPayloadSize]
	n := copy(body, payload)
	for i := n; i < xmodemPayloadSize; i++ {
		body[i] = xmodemPad
	}

	crc := crc16XMODEM(body)
	frame[3+xmodemPayloadSize] = byte(crc >> 8)
	frame[3+xmodemPayloadSize+1] = byte(crc)
	return frame
}

// XMODEMSender streams a byte slice as a sequence of XMODEM-CRC frames,
// driven by receiver control bytes read from the console byte stream. It
// holds no state beyond its position in data and the next block number,
// matching the "stateless with respect to the core" requirement.
type XMODEMSender struct {
	data  []byte
	pos   int
	block byte
}

func NewXMODEMSender(data []byte) *XMODEMSender {
	return &XMODEMSender{data: data, block: 1}
}

// Done reports whether every byte of data has been acknowledged.
func (s *XMODEMSender) Done() bool { return s.pos >= len(s.data) }

// Next consumes one receiver control byte and returns the frame to send
// next, or nil if the control byte calls for no frame (an unrecognised
// byte, or an ACK after all data is already acknowledged). C and NAK
// return the current, not yet acknowledged frame again. EOT is returned
// once all data is acknowledged.
func (s *XMODEMSender) Next(control byte) ([]byte, error) {
	switch control {
	case xmodemCAN:
		return nil, errXMODEMCanceled
	case xmodemC, xmodemNAK:
		if s.Done() {
			return []byte{xmodemEOT}, nil
		}
		end := s.pos + xmodemPayloadSize
		if end > len(s.data) {
			end = len(s.data)
		}
		frame := XMODEMFrame(s.block, s.data[s.pos:end])
		return frame, nil
	case xmodemACK:
		if s.Done() {
			return nil, nil
		}
		s.pos += xmodemPayloadSize
		s.block++
		if s.Done() {
			return []byte{xmodemEOT}, nil
		}
		end := s.pos + xmodemPayloadSize
		if end > len(s.data) {
			end = len(s.data)
		}
		return XMODEMFrame(s.block, s.data[s.pos:end]), nil
	default:
		return nil, nil
	}
}
