package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultUserAgent mimics a desktop browser; some dashboards reject bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxPageSize = 8 << 20 // 8 MB

// HTML reads capacity cells from a server-rendered dashboard table.
type HTML struct {
	url       string
	userAgent string
	client    *http.Client
}

// NewHTML creates a source for the page at url.
func NewHTML(url, userAgent string, timeout time.Duration) *HTML {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTML{
		url:       url,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

func (h *HTML) Name() string { return "html" }

func (h *HTML) Fetch(ctx context.Context, vault string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	row := findRow(doc, vault)
	if row == nil {
		return "", fmt.Errorf("%w: %s", ErrRowNotFound, vault)
	}

	cells := rowCells(row)
	return strings.TrimSpace(innerText(cells[len(cells)-1])), nil
}

// findRow returns the first <tr> with a direct <td> whose text contains vault.
func findRow(n *html.Node, vault string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
		for _, td := range rowCells(n) {
			if strings.Contains(innerText(td), vault) {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if row := findRow(c, vault); row != nil {
			return row
		}
	}
	return nil
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, c)
		}
	}
	return cells
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
