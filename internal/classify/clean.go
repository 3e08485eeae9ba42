/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package classify

import "strings"

// snippetMaxLen caps the cleaned snippet sent to the model.
const snippetMaxLen = 1500

// stopwords is the standard English stopword set; dropping these keeps
// the prompt short without losing the terms the model classifies on.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself",
		"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"am", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "having", "do", "does", "did", "doing",
		"a", "an", "the", "and", "but", "if", "or", "because", "as",
		"until", "while", "of", "at", "by", "for", "with", "about",
		"against", "between", "into", "through", "during", "before",
		"after", "above", "below", "to", "from", "up", "down", "in",
		"out", "on", "off", "over", "under", "again", "further", "then",
		"once", "here", "there", "when", "where", "why", "how", "all",
		"any", "both", "each", "few", "more", "most", "other", "some",
		"such", "no", "nor", "not", "only", "own", "same", "so", "than",
		"too", "very", "s", "t", "can", "will", "just", "don", "should",
		"now",
	} {
		stopwords[w] = struct{}{}
	}
}

// CleanSnippet normalizes a raw page snippet for prompting: control
// tokens stripped, non-printable characters mapped to spaces,
// whitespace collapsed, stopwords removed, length capped.
func CleanSnippet(snippet string) string {
	if snippet == "" {
		return ""
	}

	snippet = strings.ReplaceAll(snippet, "<s>", "")
	snippet = strings.ReplaceAll(snippet, "</s>", "")

	// Printable ASCII only; everything else becomes a space so word
	// boundaries survive.
	var b strings.Builder
	b.Grow(len(snippet))
	for _, r := range snippet {
		if r >= ' ' && r <= '~' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, drop := stopwords[strings.ToLower(w)]; !drop {
			kept = append(kept, w)
		}
	}

	cleaned := strings.Join(kept, " ")
	if len(cleaned) > snippetMaxLen {
		cleaned = cleaned[:snippetMaxLen]
	}
	return cleaned
}
