package processor

import "errors"

var (
	ErrRead          = errors.New("read error")
	ErrDecode        = errors.New("decode error")
	ErrRenderContext = errors.New("render context error")
	ErrEncode        = errors.New("encode error")
)

// Stage names the pipeline step an error belongs to, for logging.
func Stage(err error) string {
	switch {
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrRenderContext):
		return "render"
	case errors.Is(err, ErrEncode):
		return "encode"
	default:
		return "unknown"
	}
}
