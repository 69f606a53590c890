package generator

import "unicode/utf8"

// 各阶段随提示词发送的正文字符上限。
const (
	metadataBodyChars  = 2000
	checklistBodyChars = 3000
)

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
