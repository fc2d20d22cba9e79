package srt

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Train is one parsed row of the search results table.
type Train struct {
	Row       int
	Number    string
	Departure string
	Arrival   string
	Standard  string
	Waitlist  string
}

// WaitResults blocks until the first result row is on the page.
func (s *Site) WaitResults(ctx context.Context) error {
	if err := s.Driver.WaitPresent(ctx, cellSelector(1, colStandard), s.waitTimeout()); err != nil {
		return fmt.Errorf("search results: %w", err)
	}
	return nil
}

// Results parses the currently displayed results table.
func (s *Site) Results(ctx context.Context) ([]Train, error) {
	html, err := s.Driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read results page: %w", err)
	}
	return ParseResults(html)
}

// ParseResults extracts the train rows from a results page.
func ParseResults(html string) ([]Train, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var out []Train
	doc.Find(selResultRows).Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		cell := func(col int) string {
			return collapse(cells.Eq(col - 1).Text())
		}
		out = append(out, Train{
			Row:       i + 1,
			Number:    cell(3),
			Departure: cell(4),
			Arrival:   cell(5),
			Standard:  cell(colStandard),
			Waitlist:  cell(colWaitlist),
		})
	})
	return out, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
