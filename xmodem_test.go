package z180emu

import "testing"

func TestCRC16XMODEM_KnownVector(t *testing.T) {
	// "123456789" has a well-known CRC-16/XMODEM checksum of 0x31C3.
	if got := crc16XMODEM([]byte("123456789")); got != 0x31C3 {
		t.Errorf("crc16XMODEM(\"123456789\") = %#04x, want 0x31c3", got)
	}
}

func TestXMODEMFrame_PadsShortPayload(t *testing.T) {
	frame := XMODEMFrame(1, []byte("hi"))
	if len(frame) != xmodemFrameSize {
		t.Fatalf("len(frame) = %d, want %d", len(frame), xmodemFrameSize)
	}
	if frame[0] != xmodemSOH {
		t.Errorf("frame[0] = %#02x, want SOH", frame[0])
	}
	if frame[1] != 1 || frame[2] != ^byte(1) {
		t.Errorf("block/~block = %#02x/%#02x, want 0x01/0xFE", frame[1], frame[2])
	}
	if frame[3] != 'h' || frame[4] != 'i' || frame[5] != xmodemPad {
		t.Errorf("payload not padded correctly: %v", frame[3:8])
	}

	wantCRC := crc16XMODEM(frame[3 : 3+xmodemPayloadSize])
	gotCRC := uint16(frame[3+xmodemPayloadSize])<<8 | uint16(frame[3+xmodemPayloadSize+1])
	if gotCRC != wantCRC {
		t.Errorf("frame CRC = %#04x, want %#04x", gotCRC, wantCRC)
	}
}

func TestXMODEMSender_FullTransfer(t *testing.T) {
	data := make([]byte, xmodemPayloadSize+10)
	for i := range data {
		data[i] = byte(i)
	}
	s := NewXMODEMSender(data)

	frame, err := s.Next(xmodemC)
	if err != nil || frame == nil {
		t.Fatalf("Next(C) = (%v, %v), want a first frame", frame, err)
	}
	if frame[1] != 1 {
		t.Errorf("first frame block number = %d, want 1", frame[1])
	}

	frame, err = s.Next(xmodemACK)
	if err != nil || frame == nil {
		t.Fatalf("Next(ACK) = (%v, %v), want a second frame", frame, err)
	}
	if frame[1] != 2 {
		t.Errorf("second frame block number = %d, want 2", frame[1])
	}

	frame, err = s.Next(xmodemACK)
	if err != nil {
		t.Fatalf("Next(ACK) after final block returned error: %v", err)
	}
	if len(frame) != 1 || frame[0] != xmodemEOT {
		t.Errorf("Next(ACK) after final block = %v, want [EOT]", frame)
	}
}

func TestXMODEMSender_CancelReturnsError(t *testing.T) {
	s := NewXMODEMSender([]byte("data"))
	if _, err := s.Next(xmodemCAN); err != errXMODEMCanceled {
		t.Errorf("Next(CAN) error = %v, want errXMODEMCanceled", err)
	}
}

func TestXMODEMSender_NAKRetransmitsSameBlock(t *testing.T) {
	s := NewXMODEMSender([]byte("hello"))
	first, _ := s.Next(xmodemC)
	retry, _ := s.Next(xmodemNAK)
	if first[1] != retry[1] {
		t.Errorf("NAK retransmit block numbers differ: %d vs %d", first[1], retry[1])
	}
}
