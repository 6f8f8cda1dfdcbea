package server

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/opds-community/libopds2-go/opds1"

	"bookstore/internal/types"
)

const (
	opdsAcquisitionType = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	linkRelSelf         = "self"
	linkRelBuy          = "http://opds-spec.org/acquisition/buy"
	linkTypeHtml        = "text/html"

	isbnUrnTemplate = "urn:isbn:%s"
)

// opds1.Feed carries no root element name of its own
type atomFeed struct {
	XMLName xml.Name `xml:"http://www.w3.org/2005/Atom feed"`
	opds1.Feed
}

func opdsFeed(selfHref string, bks []*types.Book) atomFeed {
	entries := make([]opds1.Entry, 0, len(bks))
	for _, b := range bks {
		entries = append(entries, opdsEntry(b))
	}

	return atomFeed{Feed: opds1.Feed{
		Title:   "Books",
		Entries: entries,
		Links: []opds1.Link{{
			Rel:      linkRelSelf,
			Href:     selfHref,
			TypeLink: opdsAcquisitionType,
		}},
	}}
}

func opdsEntry(b *types.Book) opds1.Entry {
	e := opds1.Entry{
		ID:       fmt.Sprintf(isbnUrnTemplate, b.Isbn),
		Title:    b.Title,
		Author:   []opds1.Author{{Name: b.Author}},
		Language: b.Language,
		Issued:   strconv.Itoa(b.Year),
	}

	e.Content.Content = b.Publisher + ", " + strconv.Itoa(b.Pages) + " pages"

	if b.AmazonUrl != "" {
		e.Links = []opds1.Link{{
			Rel:      linkRelBuy,
			Href:     b.AmazonUrl,
			TypeLink: linkTypeHtml,
		}}
	}

	return e
}
