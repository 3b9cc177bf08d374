package tokens

import (
	"fmt"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 265

// ReadTime estimates how long body takes to read, e.g. "3 min read".
// The estimate is never below one minute.
func ReadTime(body string, wpm int) string {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := len(strings.Fields(body))
	minutes := (words + wpm - 1) / wpm
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
