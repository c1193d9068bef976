package mock

import "github.com/fwojciec/pageinfo"

var _ pageinfo.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of pageinfo.Extractor.
type Extractor struct {
	ExtractFn func(html string, baseURL string) (*pageinfo.HTMLInfo, error)
}

func (e *Extractor) Extract(html string, baseURL string) (*pageinfo.HTMLInfo, error) {
	return e.ExtractFn(html, baseURL)
}
