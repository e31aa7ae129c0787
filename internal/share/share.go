// Package share builds the social share link for a user's picks.
package share

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// IntentURL is the tweet composer endpoint.
const IntentURL = "https://twitter.com/intent/tweet?text="

// Line is one pick in a summary.
type Line struct {
	Symbol string
	PnLUSD float64
}

// Summary renders the plain-text summary of a user's picks.
func Summary(username string, lines []Line, totalPnL float64) string {
	var b strings.Builder
	b.WriteString(username)
	b.WriteString("'s Picks:\n\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Symbol)
		b.WriteString(" => ")
		b.WriteString(SignedUSD(l.PnLUSD))
	}
	b.WriteString("\n\nTotal PnL: ")
	b.WriteString(SignedUSD(totalPnL))
	b.WriteString("\nShared via #Sniperbowlbot")
	return b.String()
}

// TweetURL returns the composer link prefilled with text.
func TweetURL(text string) string {
	return IntentURL + url.QueryEscape(text)
}

// SignedUSD formats v as "+$1,234.56" or "-$1,234.56". Zero is positive.
func SignedUSD(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + "$" + GroupedUSD(math.Abs(v))
}

// GroupedUSD formats a non-negative amount with two decimals and thousands
// separators.
func GroupedUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
