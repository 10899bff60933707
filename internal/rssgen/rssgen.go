// Package rssgen renders the current paper set as an RSS 2.0 document.
// It is a pure transform: regenerated in full on every run.
package rssgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

const (
	feedTitle       = "Exoplanet Papers | Daily arXiv Summaries"
	feedDescription = "Daily summaries of exoplanet research papers from arXiv astro-ph.EP, written for general audiences."
)

type Generator struct {
	siteURL   string
	itemLimit int
	now       func() time.Time
}

func New(siteURL string, itemLimit int) *Generator {
	if itemLimit <= 0 {
		itemLimit = 50
	}
	return &Generator{siteURL: siteURL, itemLimit: itemLimit, now: time.Now}
}

// WithClock overrides the build-date clock for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the complete RSS document for the set.
func (g *Generator) Generate(set *paper.DailySet) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", feedTitle, 4)
	writeElement(&buf, "link", g.siteURL, 4)
	writeElement(&buf, "description", feedDescription, 4)
	writeElement(&buf, "language", "en-us", 4)
	writeElement(&buf, "lastBuildDate", g.now().UTC().Format(time.RFC1123Z), 4)

	pubDate := g.pubDate(set)
	papers := set.Papers
	if len(papers) > g.itemLimit {
		papers = papers[:g.itemLimit]
	}
	for i := range papers {
		g.writeItem(&buf, &papers[i], pubDate)
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return buf.String()
}

// pubDate is the announcement date at 20:00 UTC, matching arXiv's
// announcement schedule; the processing timestamp is deliberately not used.
func (g *Generator) pubDate(set *paper.DailySet) string {
	if set.AnnouncementDate != "" {
		if d, err := time.Parse("2006-01-02", set.AnnouncementDate); err == nil {
			return d.Add(20 * time.Hour).UTC().Format(time.RFC1123Z)
		}
	}
	if !set.UpdatedAt.IsZero() {
		return set.UpdatedAt.UTC().Format(time.RFC1123Z)
	}
	return g.now().UTC().Format(time.RFC1123Z)
}

func (g *Generator) writeItem(buf *bytes.Buffer, p *paper.Paper, pubDate string) {
	safeID := safeID(p.ID)
	paperURL := fmt.Sprintf("%s#paper-%s", g.siteURL, safeID)

	buf.WriteString("    <item>\n")
	writeElement(buf, "title", p.Title, 6)
	writeElement(buf, "link", paperURL, 6)
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"true\">%s</guid>\n", paperURL))
	writeElement(buf, "pubDate", pubDate, 6)
	writeElement(buf, "dc:creator", authorLine(p.Authors), 6)

	description := StripHTML(p.SummaryHTML)
	if description == "" || p.SummaryHTML == paper.SummaryUnavailableHTML {
		description = truncate(p.Abstract, 500)
	}
	buf.WriteString("      <description><![CDATA[")
	buf.WriteString(description)
	buf.WriteString("]]></description>\n")

	for _, cat := range p.Categories {
		writeElement(buf, "category", cat, 6)
	}
	buf.WriteString("    </item>\n")
}

func writeElement(buf *bytes.Buffer, name, value string, indent int) {
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<" + name + ">")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + name + ">\n")
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes markup, collapsing the result to single-spaced text.
func StripHTML(s string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " ")
}

func authorLine(authors []string) string {
	if len(authors) > 3 {
		return authors[0] + " et al."
	}
	return strings.Join(authors, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

var safeIDPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

func safeID(id string) string {
	return safeIDPattern.ReplaceAllString(id, "-")
}
