package goquery

import (
	"strconv"
	"strings"

	"github.com/fwojciec/pageinfo"
)

var mediaKinds = [...]string{"image", "video", "audio"}

// openGraphBuilder accumulates og: properties in document order.
type openGraphBuilder struct {
	og pageinfo.OpenGraph

	// dropped is set per media kind while the most recent primary tag of
	// that kind was refused at the cap, so its modifiers are refused too.
	dropped [len(mediaKinds)]bool
}

// add applies a single og: property, given without its "og:" prefix.
func (b *openGraphBuilder) add(property, content string) {
	switch property {
	case "type":
		b.og.Type = content
	case "title":
		b.og.Title = content
	case "description":
		b.og.Description = content
	case "url":
		b.og.URL = content
	case "site_name":
		b.og.SiteName = content
	case "locale":
		b.og.Locale = content
	case "locale:alternate":
		b.og.LocaleAlternates = append(b.og.LocaleAlternates, content)
	default:
		for i, kind := range mediaKinds {
			if sub, ok := mediaSubproperty(property, kind); ok {
				b.addMedia(i, sub, content)
				return
			}
		}
		if b.og.Properties == nil {
			b.og.Properties = make(map[string]string)
		}
		b.og.Properties[property] = content
	}
}

// mediaSubproperty reports whether property belongs to kind, returning the
// part after "kind:" ("" for the bare kind).
func mediaSubproperty(property, kind string) (string, bool) {
	if property == kind {
		return "", true
	}
	sub, ok := strings.CutPrefix(property, kind+":")
	return sub, ok
}

func (b *openGraphBuilder) addMedia(kind int, sub, content string) {
	list := b.mediaList(kind)

	// "image" and "image:url" open a new item.
	if sub == "" || sub == "url" {
		if len(*list) >= pageinfo.MaxMediaItems {
			b.dropped[kind] = true
			return
		}
		*list = append(*list, pageinfo.OpenGraphMedia{URL: content})
		b.dropped[kind] = false
		return
	}

	// Modifiers attach to the most recently opened item; with none open
	// they have nothing to describe.
	if b.dropped[kind] || len(*list) == 0 {
		return
	}
	m := &(*list)[len(*list)-1]
	switch sub {
	case "secure_url":
		m.SecureURL = content
	case "type":
		m.MIMEType = content
	case "width":
		m.Width = parseDimension(content)
	case "height":
		m.Height = parseDimension(content)
	case "alt":
		m.Alt = content
	default:
		if m.Properties == nil {
			m.Properties = make(map[string]string)
		}
		m.Properties[sub] = content
	}
}

func (b *openGraphBuilder) mediaList(kind int) *[]pageinfo.OpenGraphMedia {
	switch kind {
	case 0:
		return &b.og.Images
	case 1:
		return &b.og.Videos
	default:
		return &b.og.Audios
	}
}

func parseDimension(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
