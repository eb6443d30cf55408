package textmatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Options controls replacement behavior.
// The zero value means: replace all occurrences, case-sensitive, no fuzzy fallback.
type Options struct {
	// MaxReplacements limits the number of replacements. Zero means unlimited.
	MaxReplacements int
	// CaseSensitive selects exact matching. When false, occurrences are
	// located case-insensitively and replaced last-to-first.
	CaseSensitive bool
	// FuzzyThreshold is the minimum similarity ratio for the fuzzy fallback.
	// Zero disables fuzzy matching entirely.
	FuzzyThreshold float64
}

// DefaultOptions returns the options used by the file editing tool:
// case-sensitive, unlimited replacements, fuzzy fallback at 0.85.
func DefaultOptions() Options {
	return Options{CaseSensitive: true, FuzzyThreshold: 0.85}
}

// Replace replaces occurrences of old with new in content, trying strategies
// in order until one produces at least one change:
//
//  1. Exact matching (case-sensitive or case-insensitive per Options).
//  2. Fuzzy line-window matching, only when exact matching changed nothing
//     and FuzzyThreshold > 0. The first window meeting the threshold is
//     replaced and scanning stops.
//
// Line endings in all inputs are normalized to LF before matching, so the
// returned content always uses LF endings. Returns the resulting content and
// the number of replacements made. Zero replacements is not an error; callers
// decide how to report it. An empty old string is a caller error.
func Replace(content, old, new string, opts Options) (string, int, error) {
	if old == "" {
		return content, 0, fmt.Errorf("search text cannot be empty")
	}

	content = NormalizeLineEndings(content)
	old = NormalizeLineEndings(old)
	new = NormalizeLineEndings(new)

	var changes int
	if opts.CaseSensitive {
		content, changes = replaceExact(content, old, new, opts.MaxReplacements)
	} else {
		content, changes = replaceInsensitive(content, old, new, opts.MaxReplacements)
	}

	if changes == 0 && opts.FuzzyThreshold > 0 {
		content, changes = replaceFuzzy(content, old, new, opts.FuzzyThreshold)
	}

	return content, changes, nil
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// replaceExact performs case-sensitive literal replacement, honoring the
// replacement cap by replacing the first max occurrences left-to-right.
// Replacing a string with itself still counts as a change when found.
func replaceExact(content, old, new string, max int) (string, int) {
	count := strings.Count(content, old)
	if count == 0 {
		return content, 0
	}

	if max > 0 && count > max {
		return strings.Replace(content, old, new, max), max
	}
	return strings.ReplaceAll(content, old, new), count
}

// replaceInsensitive finds all occurrences case-insensitively, truncates to
// the cap, then replaces from the last match backwards so earlier byte
// offsets stay valid.
func replaceInsensitive(content, old, new string, max int) (string, int) {
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(old))
	if err != nil {
		return content, 0
	}

	matches := re.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return content, 0
	}
	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}

	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		content = content[:m[0]] + new + content[m[1]:]
	}
	return content, len(matches)
}

// replaceFuzzy slides a window of len(old-lines) lines over the content and
// splices in the replacement at the first window whose similarity to old
// meets the threshold. At most one replacement is made.
func replaceFuzzy(content, old, new string, threshold float64) (string, int) {
	lines := strings.Split(content, "\n")
	oldLines := strings.Split(old, "\n")

	for i := 0; i+len(oldLines) <= len(lines); i++ {
		window := strings.Join(lines[i:i+len(oldLines)], "\n")
		if Ratio(window, old) < threshold {
			continue
		}

		newLines := strings.Split(new, "\n")
		spliced := make([]string, 0, len(lines)-len(oldLines)+len(newLines))
		spliced = append(spliced, lines[:i]...)
		spliced = append(spliced, newLines...)
		spliced = append(spliced, lines[i+len(oldLines):]...)
		return strings.Join(spliced, "\n"), 1
	}

	return content, 0
}
