package reference

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mmdatafocus/dimension_resolver/utils"
)

// spreadsheet exports turn integer invoice numbers into "10023.0"
var floatInvoice = regexp.MustCompile(`^(\d+)\.0+$`)

// NormalizeInvoiceNumber is the index form of an invoice number.
func NormalizeInvoiceNumber(s string) string {
	s = utils.NormalizeKey(s)
	if m := floatInvoice.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// StripRevision removes the trailing run of letters from an invoice number
// ("10023B" -> "10023"). ok is false when there was nothing to strip or nothing
// would be left.
func StripRevision(invoice string) (base string, ok bool) {
	runes := []rune(invoice)
	end := len(runes)
	for end > 0 && unicode.IsLetter(runes[end-1]) {
		end--
	}
	if end == len(runes) || end == 0 {
		return invoice, false
	}
	return strings.TrimSpace(string(runes[:end])), true
}
