package services

import (
	"strings"
	"unicode"

	"kopilka/internal/models"
)

const maxMerchantWords = 3

// merchantMarkers precede a shop name in free text ("coffee at Starbucks", "хлеб в Пятёрочке").
var merchantMarkers = map[string]bool{
	"at": true, "in": true, "from": true,
	"в": true, "во": true, "из": true, "у": true,
}

var quotePairs = [][2]string{{"«", "»"}, {"\"", "\""}, {"“", "”"}}

// resolveMerchant picks the explicit merchant, then one read from the
// description, then one read from the legacy category text.
func resolveMerchant(t models.Transaction) string {
	if m := strings.TrimSpace(t.Merchant); m != "" {
		return m
	}
	if m := merchantFromText(t.Description); m != "" {
		return m
	}
	return merchantFromText(t.Category)
}

// merchantFromText returns the first quoted segment of text, or up to three
// words following a location marker. It returns "" when neither is present.
func merchantFromText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	for _, q := range quotePairs {
		start := strings.Index(text, q[0])
		if start < 0 {
			continue
		}
		rest := text[start+len(q[0]):]
		end := strings.Index(rest, q[1])
		if end < 0 {
			continue
		}
		if quoted := strings.TrimSpace(rest[:end]); quoted != "" {
			return quoted
		}
	}

	words := strings.Fields(text)
	for i, w := range words {
		if !merchantMarkers[strings.ToLower(w)] {
			continue
		}
		var name []string
		for _, next := range words[i+1:] {
			if len(name) == maxMerchantWords || hasDigit(next) {
				break
			}
			next = strings.TrimFunc(next, unicode.IsPunct)
			if next == "" {
				break
			}
			name = append(name, next)
		}
		if len(name) > 0 {
			return strings.Join(name, " ")
		}
	}
	return ""
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
