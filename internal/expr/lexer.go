package expr

import (
	"strings"
	"unicode"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// word operators and their symbolic aliases
var operators = map[string]string{
	"gt":  ">",
	"gt=": ">=",
	"lt":  "<",
	"lt=": "<=",
	"=":   "=",
	"==":  "=",
	"!=":  "!=",
	">":   ">",
	">=":  ">=",
	"<":   "<",
	"<=":  "<=",
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(input[i+1:], byte(c))
			if end < 0 {
				return nil, citrineerrors.NewExpressionError(input, i, "unterminated string literal")
			}
			tokens = append(tokens, token{kind: tokString, text: input[i+1 : i+1+end], pos: i})
			i += end + 2
		case strings.ContainsRune("=!<>", c):
			start := i
			i++
			if i < len(input) && input[i] == '=' {
				i++
			}
			text := input[start:i]
			op, ok := operators[text]
			if !ok {
				return nil, citrineerrors.NewExpressionError(input, start, "unknown operator "+text)
			}
			tokens = append(tokens, token{kind: tokOp, text: op, pos: start})
		default:
			start := i
			for i < len(input) && !unicode.IsSpace(rune(input[i])) && !strings.ContainsRune("()'\"<>!", rune(input[i])) {
				if input[i] == '=' {
					if isWordOperatorPrefix(input[start:i]) {
						i++
					}
					break
				}
				i++
			}
			word := input[start:i]
			tokens = append(tokens, classifyWord(word, start))
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(input)})
	return tokens, nil
}

// isWordOperatorPrefix reports whether "=" continues a word operator such as "gt=".
func isWordOperatorPrefix(word string) bool {
	lower := strings.ToLower(word)
	return lower == "gt" || lower == "lt"
}

func classifyWord(word string, pos int) token {
	lower := strings.ToLower(word)
	if op, ok := operators[lower]; ok {
		return token{kind: tokOp, text: op, pos: pos}
	}
	switch lower {
	case "and", "&&":
		return token{kind: tokAnd, text: lower, pos: pos}
	case "or", "||":
		return token{kind: tokOr, text: lower, pos: pos}
	}
	if isNumber(word) {
		return token{kind: tokNumber, text: word, pos: pos}
	}
	return token{kind: tokIdent, text: word, pos: pos}
}

func isNumber(word string) bool {
	if word == "" || word == "-" {
		return false
	}
	dot := false
	for i, r := range word {
		switch {
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
