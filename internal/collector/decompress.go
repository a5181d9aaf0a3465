package collector

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/go-resty/resty/v2"
)

// decompressMiddleware inflates brotli bodies. Yahoo serves brotli when
// asked; gzip bodies are already inflated by resty before this hook runs.
func decompressMiddleware(_ *resty.Client, resp *resty.Response) error {
	if resp.Header().Get("Content-Encoding") != "br" {
		return nil
	}
	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(resp.Body())))
	if err != nil {
		return err
	}
	resp.SetBody(decompressed)
	return nil
}
