// Package validate applies required-field checks to normalized records.
//
// Callers present a record as a flat map of canonical string values, with ""
// standing for an absent or empty-normalized field. The same check serves
// customer rows (name, mobile, region) and order rows (order_id, mobile,
// timestamp, sku_id); sku_count and total_amount are deliberately not
// required since they legitimately default to zero.
package validate

import "strings"

// Required field sets for the two record kinds.
var (
	CustomerFields = []string{"customer_name", "mobile_number", "region"}
	OrderFields    = []string{"order_id", "mobile_number", "order_date_time", "sku_id"}
)

// Required reports whether every field named in required is present in the
// record and non-blank after trimming. The second return lists the fields
// that failed, in the order given by required.
func Required(record map[string]string, required []string) (ok bool, missing []string) {
	for _, name := range required {
		v, present := record[name]
		if !present || strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return len(missing) == 0, missing
}
