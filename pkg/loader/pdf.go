package loader

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// readPDF extracts the native text layer of each page. Pages whose text
// extraction fails individually come back empty; those fall through the
// density gate and get routed to OCR.
func readPDF(data []byte) (pages []string, err error) {
	// The reader panics on some malformed xref tables instead of returning
	// an error; map that to a corrupt-document failure.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("%w: pdf reader: %v", ErrCorruptDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	n := reader.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrCorruptDocument)
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
