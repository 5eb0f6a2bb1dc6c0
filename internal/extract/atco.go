package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmarchuk/rentroll/constants"
)

// monthAbbrNumbers maps the three-letter month abbreviations ATCO prints in
// "Statement Date: AUG 20, 2025" to calendar month numbers.
var monthAbbrNumbers = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var (
	// "TOTAL AMOUNT DUE" is the primary label; "Amount Due" appears on some
	// statement variants. ATCO formats amounts with thousands separators.
	atcoAmountRe = regexp.MustCompile(`(?i)(?:TOTAL\s+AMOUNT\s+DUE|Amount\s+Due)\s*:?\s*\$?\s*([\d,]+\.\d{2})`)
	atcoDateRe   = regexp.MustCompile(`(?i)Statement\s*Date:\s*([A-Za-z]{3})\s+(\d{1,2}),\s*(\d{4})`)
)

// ATCOExtractor pulls fields from the ATCO bill layout. ATCO prints the
// service address on its own line, so the house number is matched from the
// allow-list at the start of a line.
type ATCOExtractor struct {
	houseRe *regexp.Regexp
}

func NewATCOExtractor(houses []string) *ATCOExtractor {
	pattern := fmt.Sprintf(`(?im)^\s*(%s)\b`, houseAlternation(houses))
	return &ATCOExtractor{houseRe: regexp.MustCompile(pattern)}
}

func (e *ATCOExtractor) Extract(text string) FieldBag {
	bag := FieldBag{Vendor: constants.VendorATCO}

	if m := e.houseRe.FindStringSubmatch(text); m != nil {
		bag.House = m[1]
	}
	if m := atcoAmountRe.FindStringSubmatch(text); m != nil {
		bag.Amount = strings.ReplaceAll(m[1], ",", "")
	}
	if m := atcoDateRe.FindStringSubmatch(text); m != nil {
		month, ok := monthAbbrNumbers[strings.ToUpper(m[1])]
		if ok {
			day, _ := strconv.Atoi(m[2])
			bag.Date = fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		}
	}
	return bag
}
