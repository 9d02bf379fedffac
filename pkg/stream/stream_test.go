package stream

import "testing"

func TestPushFrameDedup(t *testing.T) {
	s := New(4, 4)
	buf := make([]uint8, 4*4*4)

	s.PushFrame(buf, 16)
	if len(s.broadcast) != 1 {
		t.Fatalf("first frame should queue, got %d", len(s.broadcast))
	}
	s.PushFrame(buf, 16)
	if len(s.broadcast) != 1 {
		t.Errorf("identical frame should be dropped, got %d", len(s.broadcast))
	}

	buf[0] = 0xff
	s.PushFrame(buf, 16)
	if len(s.broadcast) != 2 {
		t.Errorf("changed frame should queue, got %d", len(s.broadcast))
	}
}

func TestPushFrameNeverBlocks(t *testing.T) {
	s := New(4, 4)
	buf := make([]uint8, 4*4*4)
	for i := 0; i < 32; i++ {
		buf[0] = uint8(i)
		s.PushFrame(buf, 16)
	}
}
