package decoders

import "testing"

func TestFromHeaderContentType(t *testing.T) {
	cases := []struct {
		contentType string
		url         string
		want        ContentType
	}{
		{"audio/mpeg", "http://x/stream", ContentMP3},
		{"audio/mpeg;charset=utf-8", "http://x/stream", ContentMP3},
		{"audio/x-flac", "http://x/stream", ContentFLAC},
		{"audio/wave", "http://x/stream", ContentWAV},
		{"audio/ogg", "http://x/stream.ogg", ContentVorbis},
		{"audio/ogg;codecs=opus", "http://x/stream", ContentOpus},
		{"audio/basic", "http://x/stream", ContentULaw},
		{"audio/pcma", "http://x/stream", ContentALaw},
	}
	for _, c := range cases {
		got, err := FromHeader(c.contentType, c.url)
		if err != nil {
			t.Fatalf("FromHeader(%q, %q): %v", c.contentType, c.url, err)
		}
		if got != c.want {
			t.Errorf("FromHeader(%q, %q) = %q, want %q", c.contentType, c.url, got, c.want)
		}
	}
}

func TestFromHeaderFallsBackToURLExtension(t *testing.T) {
	got, err := FromHeader("application/octet-stream", "http://x/song.flac?token=abc")
	if err != nil {
		t.Fatalf("FromHeader: %v", err)
	}
	if got != ContentFLAC {
		t.Errorf("got %q, want %q", got, ContentFLAC)
	}
}

func TestFromHeaderUnrecognized(t *testing.T) {
	if _, err := FromHeader("text/html", "http://x/page"); err == nil {
		t.Fatal("expected error for unrecognized content type and extension")
	}
}

func TestNewDecoderUnsupportedContentType(t *testing.T) {
	if _, err := NewDecoder(ContentType("audio/bogus")); err == nil {
		t.Fatal("expected error for unsupported content type")
	}
}
