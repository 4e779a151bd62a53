package websearch

import "strings"

// SplitFragments splits a raw provider response into fragments of at most
// maxLen characters. Paragraphs (blank-line separated) are packed greedily;
// a paragraph is never split when it fits within the budget on its own line.
// If the text has no usable paragraphs, the whole response is returned as a
// single truncated fragment.
func SplitFragments(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if maxLen <= 0 {
		maxLen = DefaultFragmentLength
	}

	paragraphs := strings.Split(text, "\n\n")

	var fragments []string
	var current strings.Builder

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		// +2 accounts for the paragraph separator being re-inserted.
		if current.Len()+len(para)+2 <= maxLen {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			continue
		}

		if current.Len() > 0 {
			fragments = append(fragments, current.String())
			current.Reset()
		}
		current.WriteString(para)
	}

	if current.Len() > 0 {
		fragments = append(fragments, current.String())
	}

	if len(fragments) == 0 {
		if len(text) > maxLen {
			text = text[:maxLen]
		}
		fragments = []string{text}
	}

	return fragments
}
