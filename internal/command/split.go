// SPDX-License-Identifier: EPL-2.0

package command

import "strings"

// Split breaks line into words. Quotes group characters into one word and
// are removed; inside single quotes a backslash is literal.
func Split(line string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false

		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"':
				escaped = true
			default:
				word.WriteRune(r)
			}

		case r == '\\':
			escaped, inWord = true, true

		case r == '"' || r == '\'':
			quote, inWord = r, true

		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}

		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if escaped {
		return nil, ErrTrailingEscape
	}
	if inWord {
		words = append(words, word.String())
	}

	return words, nil
}
