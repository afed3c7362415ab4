package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// ordersRoot is the expected wrapper element of an order feed.
const ordersRoot = "orders"

// ReadOrdersXML parses an order XML file into raw records.
//
// The document is a root element wrapping repeated <order> elements; each
// child element of an <order> becomes one field, keyed by tag name with the
// element text as value. A malformed document is a parse failure for the
// whole file: no partial record list is returned.
func ReadOrdersXML(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	var records []Record
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "order" {
			continue
		}
		var elem orderElement
		if err := dec.DecodeElement(&elem, &start); err != nil {
			return nil, fmt.Errorf("parse order element: %w", err)
		}
		rec := make(Record, len(elem.Fields))
		for _, field := range elem.Fields {
			rec[field.XMLName.Local] = field.Value
		}
		records = append(records, rec)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// orderElement captures an <order> element as a flat list of child fields.
type orderElement struct {
	Fields []orderField `xml:",any"`
}

type orderField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// PrecheckXML is a structural sniff, not schema validation: the file must
// contain the well-known <orders> wrapper pair. The full document is read
// into memory, which is acceptable for the feed sizes this pipeline sees.
func PrecheckXML(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read xml: %w", err)
	}
	s := string(content)
	if !strings.Contains(s, "<"+ordersRoot+">") || !strings.Contains(s, "</"+ordersRoot+">") {
		return fmt.Errorf("missing <%s> wrapper element", ordersRoot)
	}
	return nil
}
