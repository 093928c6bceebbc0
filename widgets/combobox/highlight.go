package combobox

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// Chunk is a run of option text that either matches what the user typed or was
// suggested by the option. Start and End are byte offsets into the option text.
type Chunk struct {
	Text      string
	Start     int
	End       int
	Highlight bool
}

// Attributes are the attributes of the span rendering the chunk.
func (c Chunk) Attributes() map[string]string {
	attrs := map[string]string{"data-reach-combobox-option-text": ""}

	if c.Highlight {
		attrs["data-user-value"] = "true"
	} else {
		attrs["data-suggested-value"] = "true"
	}

	return attrs
}

// HighlightChunks splits text into chunks, highlighting every case-insensitive
// occurrence of each whitespace-separated word of query. Overlapping matches are
// merged. Text with no match comes back as a single unhighlighted chunk.
func HighlightChunks(text, query string) []Chunk {
	return fillChunks(text, combineChunks(findChunks(text, strings.Fields(query))))
}

func findChunks(text string, words []string) []Chunk {
	var chunks []Chunk

	for _, word := range words {
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(word))

		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[1] > loc[0] {
				chunks = append(chunks, Chunk{Start: loc[0], End: loc[1]})
			}
		}
	}

	return chunks
}

func combineChunks(chunks []Chunk) []Chunk {
	slices.SortStableFunc(chunks, func(a, b Chunk) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var combined []Chunk

	for _, next := range chunks {
		if len(combined) == 0 {
			combined = append(combined, next)

			continue
		}

		last := &combined[len(combined)-1]
		if next.Start <= last.End {
			last.End = max(last.End, next.End)

			continue
		}

		combined = append(combined, next)
	}

	return combined
}

func fillChunks(text string, highlighted []Chunk) []Chunk {
	var all []Chunk

	add := func(start, end int, highlight bool) {
		if end > start {
			all = append(all, Chunk{Text: text[start:end], Start: start, End: end, Highlight: highlight})
		}
	}

	last := 0

	for _, chunk := range highlighted {
		add(last, chunk.Start, false)
		add(chunk.Start, chunk.End, true)
		last = chunk.End
	}

	add(last, len(text), false)

	return all
}
