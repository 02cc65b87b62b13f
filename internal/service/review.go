package service

import (
	"fmt"
	"strings"
)

// FormatReview собирает текст финального обзора
func FormatReview(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Final Score: %d/%d\n\n", summary.Score, summary.Total)
	b.WriteString("----- Answer Review -----\n")
	for _, r := range summary.Review {
		b.WriteString(r.String())
		b.WriteString("\n")
	}
	return b.String()
}
