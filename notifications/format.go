package notifications

import (
	"fmt"
	"time"
)

// formatAmount renders minor units as a rupee string, e.g. 99900 -> "₹999.00".
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, minor/100, minor%100)
}

var ist = time.FixedZone("IST", 5*60*60+30*60)

func formatTime(t time.Time) string {
	return t.In(ist).Format("02 Jan 2006, 15:04 MST")
}
