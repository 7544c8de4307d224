package coingecko

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/cryptocli/internal/provider"
	"github.com/seenimoa/cryptocli/pkg/utils"
)

// rawExcerptScan bounds how much of a non-HTML body is scanned.
const rawExcerptScan = 8 << 10

// excerpt returns a short single-line preview of body. HTML pages (CDN
// error and challenge pages) are reduced to their visible text.
func excerpt(body []byte, contentType string) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	if strings.Contains(strings.ToLower(contentType), "text/html") {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
			doc.Find("script, style, noscript").Remove()
			text := strings.TrimSpace(doc.Find("title").Text() + " " + doc.Find("body").Text())
			if s := utils.Excerpt(text, provider.ExcerptMaxLen); s != "" {
				return s
			}
		}
	}

	if len(body) > rawExcerptScan {
		body = body[:rawExcerptScan]
	}
	return utils.Excerpt(string(body), provider.ExcerptMaxLen)
}
