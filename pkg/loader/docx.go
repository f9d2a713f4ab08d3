package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// readDOCX extracts paragraph and table text from word/document.xml.
// DOCX has no fixed pagination; pages are split on rendered page break
// markers, and a document without any becomes a single page.
func readDOCX(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip container: %v", ErrCorruptDocument, err)
	}

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: missing word/document.xml", ErrCorruptDocument)
	}

	rc, err := docXML.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

// parseDocumentXML walks the WordprocessingML token stream collecting w:t
// text runs, inserting newlines at paragraph ends and tabs between table
// cells so the extractor sees rows the way the document laid them out.
func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var pages []string
	var sb strings.Builder
	inText := false
	cellDepth := 0

	flushPage := func() {
		pages = append(pages, sb.String())
		sb.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document.xml: %v", ErrCorruptDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tc":
				cellDepth++
			case "tab":
				sb.WriteString("\t")
			case "lastRenderedPageBreak":
				flushPage()
			case "br":
				for _, a := range t.Attr {
					if a.Name.Local == "type" && a.Value == "page" {
						flushPage()
					}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// Inside a table cell the row newline comes from w:tr; a
				// per-paragraph newline would split the row.
				if cellDepth == 0 {
					sb.WriteString("\n")
				}
			case "tc":
				cellDepth--
				sb.WriteString("\t")
			case "tr":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	flushPage()
	return pages, nil
}
