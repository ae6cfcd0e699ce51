package filtergraph

import "testing"

func int16sFromBytes(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
	}
	return out
}

func bytesFromInt16s(vals []int16) []byte {
	out := make([]byte, len(vals)*2)
	for i, v := range vals {
		out[i*2] = byte(v & 0xFF)
		out[i*2+1] = byte((v >> 8) & 0xFF)
	}
	return out
}

func TestProcessPassthroughNoGainNoResample(t *testing.T) {
	g, err := New(44100, 2, 16, TargetFormat{SampleRate: 44100, Channels: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	in := bytesFromInt16s([]int16{100, -100, 200, -200})
	out, err := g.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := int16sFromBytes(out)
	want := []int16{100, -100, 200, -200}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestProcessAppliesGain(t *testing.T) {
	g, err := New(44100, 1, 16, TargetFormat{SampleRate: 44100, Channels: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	g.SetVolumeDB(-6)
	in := bytesFromInt16s([]int16{10000})
	out, err := g.Process(in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := int16sFromBytes(out)[0]
	if got >= 10000 {
		t.Errorf("expected attenuated sample, got %d", got)
	}
	if got < 4000 {
		t.Errorf("gain attenuation too strong, got %d", got)
	}
}

func TestTo16BitFrom8Bit(t *testing.T) {
	out, err := to16Bit([]byte{0, 128, 255}, 8)
	if err != nil {
		t.Fatalf("to16Bit: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(out))
	}
}

func TestTo16BitUnsupportedDepth(t *testing.T) {
	if _, err := to16Bit([]byte{0, 1}, 12); err == nil {
		t.Fatal("expected error for unsupported bit depth")
	}
}
