package http

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/pageinfo"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
)

// AcceptEncoding lists the content codings decodeBody understands.
const AcceptEncoding = "gzip, deflate, br, zstd"

const readChunkSize = 32 * 1024

// zstdMaxMemory bounds the window a zstd stream may request.
const zstdMaxMemory = 64 << 20

// decodeBody wraps r with decoders for the Content-Encoding header value.
// Codings are undone in reverse order of application.
func decodeBody(r io.Reader, contentEncoding string) (io.Reader, []io.Closer, error) {
	var closers []io.Closer
	codings := strings.Split(contentEncoding, ",")
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		switch coding {
		case "", "identity":
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(r)
			if err != nil {
				return nil, closers, pageinfo.Errorf(pageinfo.ETRANSPORT, "invalid gzip body: %v", err)
			}
			closers = append(closers, zr)
			r = zr
		case "deflate":
			dr, err := newDeflateReader(r)
			if err != nil {
				return nil, closers, pageinfo.Errorf(pageinfo.ETRANSPORT, "invalid deflate body: %v", err)
			}
			closers = append(closers, dr)
			r = dr
		case "br":
			r = brotli.NewReader(r)
		case "zstd":
			zr, err := zstd.NewReader(r,
				zstd.WithDecoderConcurrency(1),
				zstd.WithDecoderMaxMemory(zstdMaxMemory),
			)
			if err != nil {
				return nil, closers, pageinfo.Errorf(pageinfo.ETRANSPORT, "invalid zstd body: %v", err)
			}
			rc := zr.IOReadCloser()
			closers = append(closers, rc)
			r = rc
		default:
			return nil, closers, pageinfo.Errorf(pageinfo.ETRANSPORT, "unsupported content encoding %q", coding)
		}
	}
	return r, closers, nil
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams, as
// servers disagree on what "deflate" means.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err == nil && isZlibHeader(header) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(b []byte) bool {
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// readLimited reads r to EOF in chunks. It fails with ETOOLARGE as soon as
// more than max bytes have been produced; nothing read so far is returned.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if int64(buf.Len())+int64(n) > max {
				return nil, pageinfo.Errorf(pageinfo.ETOOLARGE, "response body exceeds %d bytes", max)
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// toUTF8 transcodes body using the charset declared in the Content-Type
// header or the document itself. Undecodable bodies are returned as-is.
func toUTF8(body []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
