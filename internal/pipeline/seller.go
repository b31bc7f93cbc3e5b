package pipeline

import (
	"net/url"
	"strings"
)

// ResolveSellers backfills missing seller identity on a normalized batch.
// A blank mall_name is filled with the host portion of the record's link,
// then a blank seller is filled with the (possibly just-filled) mall_name.
// The fill order matters because seller depends on mall_name. The input
// slice is not modified.
func ResolveSellers(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)

	for i := range out {
		if strings.TrimSpace(out[i].MallName) == "" {
			out[i].MallName = linkHost(out[i].Link)
		}
		if strings.TrimSpace(out[i].Seller) == "" {
			out[i].Seller = out[i].MallName
		}
	}
	return out
}

// linkHost extracts the authority component of a product URL.
// Blank or unparseable links yield an empty string, never an error.
func linkHost(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Host
}
