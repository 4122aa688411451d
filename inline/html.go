// Package inline implements the inline-table source adapter: it
// reconstructs product tables embedded directly in a message body, from
// tabular HTML when present and from line-oriented plain text otherwise.
package inline

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlTables parses the HTML body and returns every <table> as a cell grid.
// Returns nil when the markup cannot be parsed or contains no tables.
func htmlTables(body string) [][][]string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var tables [][][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if rows := tableRows(n); len(rows) > 0 {
				tables = append(tables, rows)
			}
			// Nested tables inside a data table are layout noise.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tables
}

// tableRows flattens one table element into rows of trimmed cell text,
// descending through thead/tbody/tfoot wrappers.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

// textContent returns the trimmed, space-joined text beneath a node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
