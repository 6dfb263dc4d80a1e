// Package feed parses Songza XML feeds and renders song lists as markup.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

const (
	songElement = "song"
	nameElement = "name"
)

type rawSong struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Parse decodes a feed body and checks that its root element is expectedRoot.
//
// Song elements are collected at any depth in document order. Songs missing a
// title or link are skipped and counted in FeedDocument.Skipped. The first
// name element outside a song becomes the feed name.
//
// Anything other than whitespace, comments or processing instructions after
// the root element closes is a format error.
//
// Errors wrap domain.ErrFeedFormat or domain.ErrFeedRootMismatch.
func Parse(data []byte, expectedRoot string) (domain.FeedDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		doc      domain.FeedDocument
		haveRoot bool
		haveName bool
		depth    int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.FeedDocument{}, fmt.Errorf("%w: %v", domain.ErrFeedFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if haveRoot && depth == 0 {
				return domain.FeedDocument{}, fmt.Errorf("%w: <%s> after document element",
					domain.ErrFeedFormat, t.Name.Local)
			}
			if !haveRoot {
				haveRoot = true
				doc.Root = t.Name.Local
				if doc.Root != expectedRoot {
					return domain.FeedDocument{}, fmt.Errorf("%w: got <%s>, want <%s>",
						domain.ErrFeedRootMismatch, doc.Root, expectedRoot)
				}
				depth++
				continue
			}

			switch t.Name.Local {
			case songElement:
				var s rawSong
				if err := dec.DecodeElement(&s, &t); err != nil {
					return domain.FeedDocument{}, fmt.Errorf("%w: %v", domain.ErrFeedFormat, err)
				}
				entry := domain.SongEntry{
					Title: strings.TrimSpace(s.Title),
					Link:  strings.TrimSpace(s.Link),
				}
				if !entry.Valid() {
					doc.Skipped++
					continue
				}
				doc.Songs = append(doc.Songs, entry)
				continue
			case nameElement:
				if !haveName {
					var name string
					if err := dec.DecodeElement(&name, &t); err != nil {
						return domain.FeedDocument{}, fmt.Errorf("%w: %v", domain.ErrFeedFormat, err)
					}
					doc.Name = strings.TrimSpace(name)
					haveName = true
					continue
				}
			}
			depth++

		case xml.EndElement:
			depth--

		case xml.CharData:
			if haveRoot && depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return domain.FeedDocument{}, fmt.Errorf("%w: text after document element", domain.ErrFeedFormat)
			}
		}
	}

	if !haveRoot {
		return domain.FeedDocument{}, fmt.Errorf("%w: no root element", domain.ErrFeedFormat)
	}
	if depth != 0 {
		return domain.FeedDocument{}, fmt.Errorf("%w: unclosed elements", domain.ErrFeedFormat)
	}
	return doc, nil
}
