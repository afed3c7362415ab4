package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CustomerRow is one line of a customers CSV fixture.
type CustomerRow struct {
	Name   string
	Mobile string
	Region string
}

// OrderRow is one <order> element of an orders XML fixture.
type OrderRow struct {
	OrderID  int
	Mobile   string
	DateTime string
	SKUID    string
	SKUCount int
	Amount   float64
}

// WriteCustomersCSV writes a well-formed customers CSV into dir and returns
// its path.
func WriteCustomersCSV(t *testing.T, dir, name string, rows []CustomerRow) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("customer_name,mobile_number,region\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,%s\n", r.Name, r.Mobile, r.Region)
	}
	return writeFile(t, dir, name, b.String())
}

// WriteOrdersXML writes a well-formed orders XML into dir and returns its
// path.
func WriteOrdersXML(t *testing.T, dir, name string, rows []OrderRow) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("<orders>\n")
	for _, r := range rows {
		b.WriteString("  <order>\n")
		fmt.Fprintf(&b, "    <order_id>%d</order_id>\n", r.OrderID)
		fmt.Fprintf(&b, "    <mobile_number>%s</mobile_number>\n", r.Mobile)
		fmt.Fprintf(&b, "    <order_date_time>%s</order_date_time>\n", r.DateTime)
		fmt.Fprintf(&b, "    <sku_id>%s</sku_id>\n", r.SKUID)
		fmt.Fprintf(&b, "    <sku_count>%d</sku_count>\n", r.SKUCount)
		fmt.Fprintf(&b, "    <total_amount>%.2f</total_amount>\n", r.Amount)
		b.WriteString("  </order>\n")
	}
	b.WriteString("</orders>\n")
	return writeFile(t, dir, name, b.String())
}

// WriteRawFile writes arbitrary content into dir, for malformed-input tests.
func WriteRawFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	return writeFile(t, dir, name, content)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
