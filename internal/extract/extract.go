// File path: internal/extract/extract.go
package extract

import "strings"

// NotAvailable is the sentinel returned for any field whose label is not
// present in the raw description. Consumers render it directly; no field is
// ever empty.
const NotAvailable = "N/A"

// Fields holds the structured values recovered from a work order's free-form
// description text.
type Fields struct {
	Access            string `json:"access"`
	BoxCount          string `json:"box_count"`
	BoxType           string `json:"box_type"`
	PhoneDeliveryNote string `json:"phone_delivery_note"`
	SLID              string `json:"slid"`
}

type matchMode int

const (
	modeDigitsExact matchMode = iota
	modeDigits
	modeUntilLabel
	modeToken
)

type fieldSpec struct {
	label string
	mode  matchMode
	width int
}

// fieldTable drives the whole extractor: one entry per derived field, matched
// independently against its literal label.
var fieldTable = []fieldSpec{
	{label: "Acesso:", mode: modeDigitsExact, width: 9},
	{label: "Caixas:", mode: modeDigits},
	{label: "Tipo Caixa:", mode: modeUntilLabel},
	{label: "Entrega Telefone:", mode: modeUntilLabel},
	{label: "SLID:", mode: modeToken},
}

// Extract parses the raw description into its structured fields. It is pure:
// no I/O, deterministic, and it never fails — an unmatched label resolves to
// the NotAvailable sentinel.
func Extract(raw string) Fields {
	values := make(map[string]string, len(fieldTable))
	for _, spec := range fieldTable {
		values[spec.label] = matchField(raw, spec)
	}
	return Fields{
		Access:            values["Acesso:"],
		BoxCount:          values["Caixas:"],
		BoxType:           values["Tipo Caixa:"],
		PhoneDeliveryNote: values["Entrega Telefone:"],
		SLID:              values["SLID:"],
	}
}

func matchField(raw string, spec fieldSpec) string {
	rest, ok := sliceAfter(raw, spec.label)
	if !ok {
		return NotAvailable
	}
	switch spec.mode {
	case modeDigitsExact:
		digits := leadingDigits(rest)
		if len(digits) != spec.width {
			return NotAvailable
		}
		return digits
	case modeDigits:
		digits := leadingDigits(rest)
		if digits == "" {
			return NotAvailable
		}
		return digits
	case modeUntilLabel:
		value := strings.TrimSpace(cutAtNextLabel(rest, spec.label))
		if value == "" {
			return NotAvailable
		}
		return value
	case modeToken:
		token := leadingToken(rest)
		if token == "" {
			return NotAvailable
		}
		return token
	}
	return NotAvailable
}

// sliceAfter returns the text following the first occurrence of label, with
// leading whitespace removed.
func sliceAfter(raw, label string) (string, bool) {
	idx := strings.Index(raw, label)
	if idx < 0 {
		return "", false
	}
	return strings.TrimLeft(raw[idx+len(label):], " \t"), true
}

// cutAtNextLabel truncates rest at the earliest occurrence of any other known
// label, so free-text fields never swallow their neighbours.
func cutAtNextLabel(rest, ownLabel string) string {
	cut := len(rest)
	for _, spec := range fieldTable {
		if spec.label == ownLabel {
			continue
		}
		if idx := strings.Index(rest, spec.label); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return rest[:cut]
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// leadingToken takes the run of ASCII letters and digits, stopping at the
// first whitespace or punctuation. Service-line ids are plain alphanumerics.
func leadingToken(s string) string {
	end := 0
	for end < len(s) && isAlnum(s[end]) {
		end++
	}
	return s[:end]
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
