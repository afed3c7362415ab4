package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadCustomersCSV(t *testing.T) {
	path := writeFile(t, "customers.csv",
		"customer_name,mobile_number,region,notes\n"+
			"Amit,9876543210,North,vip\n"+
			"Priya,9876543211,West,\n")

	records, err := ReadCustomersCSV(path)
	if err != nil {
		t.Fatalf("ReadCustomersCSV() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["customer_name"] != "Amit" || records[0]["region"] != "North" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	// Extra columns are carried through.
	if records[0]["notes"] != "vip" {
		t.Errorf("extra column dropped: %v", records[0])
	}
}

func TestReadCustomersCSV_HeaderOnly(t *testing.T) {
	path := writeFile(t, "customers.csv", "customer_name,mobile_number,region\n")

	records, err := ReadCustomersCSV(path)
	if err != nil {
		t.Fatalf("ReadCustomersCSV() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestReadCustomersCSV_RaggedRow(t *testing.T) {
	path := writeFile(t, "customers.csv",
		"customer_name,mobile_number,region\n"+
			"Amit,9876543210\n")

	if _, err := ReadCustomersCSV(path); err == nil {
		t.Error("expected error for ragged row")
	}
}

func TestReadCustomersCSV_Missing(t *testing.T) {
	if _, err := ReadCustomersCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrecheckCSV(t *testing.T) {
	good := writeFile(t, "good.csv",
		"customer_name,mobile_number,region\nAmit,9876543210,North\n")
	if err := PrecheckCSV(good); err != nil {
		t.Errorf("PrecheckCSV(good) = %v, want nil", err)
	}

	bad := writeFile(t, "bad.csv",
		"customer_name,mobile_number,region\nAmit,9876543210\n")
	if err := PrecheckCSV(bad); err == nil {
		t.Error("PrecheckCSV(bad) = nil, want error")
	}
}

func TestReadOrdersXML(t *testing.T) {
	path := writeFile(t, "orders.xml", `<orders>
  <order>
    <order_id>1001</order_id>
    <mobile_number>9876543210</mobile_number>
    <order_date_time>2024-10-15 10:30:00</order_date_time>
    <sku_id>SKU001</sku_id>
    <sku_count>2</sku_count>
    <total_amount>5500.00</total_amount>
  </order>
  <order>
    <order_id>1002</order_id>
    <mobile_number>9876543211</mobile_number>
    <order_date_time>2024-10-16 14:20:00</order_date_time>
    <sku_id>SKU002</sku_id>
    <sku_count>1</sku_count>
    <total_amount>3200.50</total_amount>
  </order>
</orders>`)

	records, err := ReadOrdersXML(path)
	if err != nil {
		t.Fatalf("ReadOrdersXML() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["order_id"] != "1001" || records[0]["sku_id"] != "SKU001" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if records[1]["total_amount"] != "3200.50" {
		t.Errorf("unexpected second record: %v", records[1])
	}
}

func TestReadOrdersXML_MissingChildElements(t *testing.T) {
	path := writeFile(t, "orders.xml", `<orders>
  <order>
    <order_id>1001</order_id>
  </order>
</orders>`)

	records, err := ReadOrdersXML(path)
	if err != nil {
		t.Fatalf("ReadOrdersXML() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if _, present := records[0]["mobile_number"]; present {
		t.Error("absent element should not produce a key")
	}
}

func TestReadOrdersXML_Malformed(t *testing.T) {
	path := writeFile(t, "orders.xml", `<orders><order><order_id>1001`)
	if _, err := ReadOrdersXML(path); err == nil {
		t.Error("expected error for malformed xml")
	}
}

func TestPrecheckXML(t *testing.T) {
	good := writeFile(t, "good.xml", "<orders><order></order></orders>")
	if err := PrecheckXML(good); err != nil {
		t.Errorf("PrecheckXML(good) = %v, want nil", err)
	}

	bad := writeFile(t, "bad.xml", "<receipts><receipt/></receipts>")
	if err := PrecheckXML(bad); err == nil {
		t.Error("PrecheckXML(bad) = nil, want error")
	}
}
