package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmarchuk/rentroll/constants"
)

// monthNumbers maps full month names to calendar month numbers, for the
// compact CurrentBillDate token ENMAX prints (e.g. "2025August5").
var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
}

var (
	// Amount labels in priority order: the pre-authorized amount wins over
	// total current charges when both appear.
	enmaxAmountRe = regexp.MustCompile(`(?i)(PreAuthorizedAmount.*?\$|TotalCurrentCharges.*?\$)\s*(\d+\.\d{2})`)
	enmaxDateRe   = regexp.MustCompile(`(?i)CurrentBillDate:\s*(\d{4})(January|February|March|April|May|June|July|August|September|October|November|December)(\d{1,2})`)
)

// ENMAXExtractor pulls fields from the ENMAX bill layout. The house number
// is matched inside the SERVICE ADDRESS line against the configured
// allow-list; anything not on the list is left unmatched.
type ENMAXExtractor struct {
	houseRe *regexp.Regexp
}

func NewENMAXExtractor(houses []string) *ENMAXExtractor {
	pattern := fmt.Sprintf(`(?i)SERVICE\s*ADDRESS[^:\n]{0,80}:\s*(%s)`, houseAlternation(houses))
	return &ENMAXExtractor{houseRe: regexp.MustCompile(pattern)}
}

func (e *ENMAXExtractor) Extract(text string) FieldBag {
	bag := FieldBag{Vendor: constants.VendorENMAX}

	if m := e.houseRe.FindStringSubmatch(text); m != nil {
		bag.House = m[1]
	}
	if m := enmaxAmountRe.FindStringSubmatch(text); m != nil {
		bag.Amount = m[2]
	}
	if m := enmaxDateRe.FindStringSubmatch(text); m != nil {
		year := m[1]
		month := monthNumbers[strings.ToLower(m[2])]
		day, _ := strconv.Atoi(m[3])
		bag.Date = fmt.Sprintf("%s-%02d-%02d", year, month, day)
	}
	return bag
}
