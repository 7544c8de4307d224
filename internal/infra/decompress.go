package infra

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DecompressMiddleware returns a resty response hook that decodes brotli
// bodies in place. Resty already inflates gzip. A body that fails to decode
// is left untouched so the JSON decoder reports it.
func DecompressMiddleware(log *zap.Logger) resty.ResponseMiddleware {
	return func(c *resty.Client, resp *resty.Response) error {
		encoding := strings.ToLower(strings.TrimSpace(resp.Header().Get("Content-Encoding")))
		if encoding != "br" || len(resp.Body()) == 0 {
			return nil
		}

		decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(resp.Body())))
		if err != nil {
			log.Debug("brotli decode failed", zap.Error(err))
			return nil
		}

		resp.SetBody(decoded)
		resp.Header().Del("Content-Encoding")
		return nil
	}
}
