package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTML extracts text from HTML exports of SoF documents (some agents
// mail the statement as an HTML table). The whole document becomes one
// page; table rows and paragraphs each become a line.
func readHTML(data []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var sb strings.Builder
	doc.Find("h1,h2,h3,h4,p,li,tr,pre").Each(func(i int, s *goquery.Selection) {
		if goquery.NodeName(s) == "tr" {
			var cells []string
			s.Find("th,td").Each(func(j int, cell *goquery.Selection) {
				cells = append(cells, normalizeText(cell.Text()))
			})
			if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
				sb.WriteString(line)
				sb.WriteString("\n")
			}
			return
		}
		if text := normalizeText(s.Text()); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	return []string{sb.String()}, nil
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
