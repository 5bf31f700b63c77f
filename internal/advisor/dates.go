package advisor

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"20060102",
}

// Excel serial numbers between these bounds cover 1954 through 2119. Smaller
// numbers are far more likely to be plain day-of-month or amount values.
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// Compact yyyymmdd dates arrive as numbers because numeric cells are typed
// on load.
const (
	minCompactDate = 19000101
	maxCompactDate = 21001231
)

// parseDate reads a date cell. Text is tried against common layouts; numbers
// are read as compact yyyymmdd dates or Excel serial dates.
func parseDate(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case float64:
		if val >= minCompactDate && val <= maxCompactDate && val == math.Trunc(val) {
			t, err := time.Parse("20060102", strconv.FormatInt(int64(val), 10))
			if err != nil {
				return time.Time{}, false
			}
			return t, true
		}
		if val < minExcelSerial || val > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(val, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
