// Package jsontext locates JSON payloads embedded in noisy process output.
//
// Commands run through sudo echo a password prompt onto the captured
// stream, and the backend tool interleaves log lines with its JSON output.
// ExtractFirstJSON recovers the first complete top-level JSON value from
// such a stream without spawning anything, so it can be unit tested
// deterministically.
package jsontext

import (
	"errors"
	"regexp"
)

// ErrNoJSON is returned when no balanced JSON object or array is present.
var ErrNoJSON = errors.New("no balanced JSON value found in output")

// sudoNoisePattern matches a sudo password prompt and everything after it
// up to (but not including) the next opening bracket. (?s) lets the run
// span newlines, which covers multi-line prompt echoes.
var sudoNoisePattern = regexp.MustCompile(`(?s)\[sudo\] password for [^:]*:[^{\[]*`)

// ExtractFirstJSON returns the first balanced JSON object or array embedded
// in text. Stray closing brackets before any opener are ignored as noise,
// and a mismatched closer inside a candidate does not abort the scan. The
// first structure whose brackets return to balance wins; anything after it
// is ignored.
func ExtractFirstJSON(text string) (string, error) {
	cleaned := sudoNoisePattern.ReplaceAllString(text, "")

	var stack []byte
	start := -1
	for i := 0; i < len(cleaned); i++ {
		switch c := cleaned[i]; c {
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				// Closer with no opener is log noise, not JSON.
				continue
			}
			opener := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !matches(opener, c) {
				continue
			}
			if len(stack) == 0 {
				return cleaned[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSON
}

// matches reports whether closer closes opener
func matches(opener, closer byte) bool {
	return (opener == '{' && closer == '}') || (opener == '[' && closer == ']')
}
