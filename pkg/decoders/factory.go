package decoders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drgolem/streamplayer/pkg/decoders/flac"
	"github.com/drgolem/streamplayer/pkg/decoders/g711"
	"github.com/drgolem/streamplayer/pkg/decoders/mp3"
	"github.com/drgolem/streamplayer/pkg/decoders/opus"
	"github.com/drgolem/streamplayer/pkg/decoders/vorbis"
	"github.com/drgolem/streamplayer/pkg/decoders/wav"
	"github.com/drgolem/streamplayer/pkg/types"
)

// ContentType is the probed codec/container of a stream, the Go-native
// stand-in for avformat's "find_best_stream" decision: there is exactly
// one elementary audio stream per network URL (no multiplexed container
// with several candidate streams to discard), so selecting the best
// stream reduces to recognizing its content type.
type ContentType string

const (
	ContentMP3    ContentType = "audio/mpeg"
	ContentFLAC   ContentType = "audio/flac"
	ContentWAV    ContentType = "audio/wav"
	ContentOpus   ContentType = "audio/opus"
	ContentVorbis ContentType = "audio/ogg"
	ContentALaw   ContentType = "audio/pcma"
	ContentULaw   ContentType = "audio/basic"
)

// FromHeader normalizes an HTTP Content-Type header (ignoring parameters,
// except that a "codecs=opus" parameter on an Ogg type selects Opus) plus
// a URL for extension fallback when the server omits or mis-reports
// Content-Type, into a recognized ContentType.
func FromHeader(contentType, url string) (ContentType, error) {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	codecs := strings.ToLower(contentType)

	switch base {
	case "audio/mpeg", "audio/mp3":
		return ContentMP3, nil
	case "audio/flac", "audio/x-flac":
		return ContentFLAC, nil
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ContentWAV, nil
	case "audio/opus":
		return ContentOpus, nil
	case "audio/ogg", "application/ogg":
		if strings.Contains(codecs, "opus") {
			return ContentOpus, nil
		}
		return ContentVorbis, nil
	case "audio/pcma", "audio/alaw":
		return ContentALaw, nil
	case "audio/basic", "audio/pcmu", "audio/ulaw":
		return ContentULaw, nil
	}

	// Fall back to the URL's extension (query string stripped), the same
	// dispatch this package used for local file paths before streaming.
	ext := strings.ToLower(filepath.Ext(strings.SplitN(url, "?", 2)[0]))
	switch ext {
	case ".mp3":
		return ContentMP3, nil
	case ".flac", ".fla":
		return ContentFLAC, nil
	case ".wav":
		return ContentWAV, nil
	case ".opus":
		return ContentOpus, nil
	case ".ogg", ".oga":
		return ContentVorbis, nil
	}

	return "", fmt.Errorf("find_best_stream: unrecognized audio content type %q (url %q)", contentType, url)
}

// NewDecoder allocates (but does not open) a decoder for the given content
// type. Mirrors "allocate-decoder-from-codecpar" from the media library
// adapter's capability set.
func NewDecoder(ct ContentType) (types.AudioDecoder, error) {
	switch ct {
	case ContentMP3:
		return mp3.NewDecoder(), nil
	case ContentFLAC:
		return flac.NewDecoder(), nil
	case ContentWAV:
		return wav.NewDecoder(), nil
	case ContentOpus:
		return opus.NewDecoder(), nil
	case ContentVorbis:
		return vorbis.NewDecoder(), nil
	case ContentALaw:
		return g711.NewDecoder(g711.ALaw), nil
	case ContentULaw:
		return g711.NewDecoder(g711.ULaw), nil
	default:
		return nil, fmt.Errorf("unsupported content type: %q", ct)
	}
}

