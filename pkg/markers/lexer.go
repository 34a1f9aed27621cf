// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenKind classifies a lexed token.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenOp
	tokenLParen
	tokenRParen
	tokenEOF
)

// token is a single lexed unit of a marker expression.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// operators lists the comparison operators, longest first so that the lexer
// never splits ">=" into ">" and "=".
var operators = []string{"===", "==", "!=", ">=", "<=", "~=", ">", "<"}

// lex tokenizes a marker expression. "in" and "not in" are lexed as
// identifiers and recombined by the parser.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		c := rune(input[i])

		switch {
		case unicode.IsSpace(c):
			i++

		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++

		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++

		case c == '"' || c == '\'':
			end := strings.IndexByte(input[i+1:], byte(c))
			if end < 0 {
				return nil, &SyntaxError{Input: input, Pos: i, Message: "unterminated string literal"}
			}
			tokens = append(tokens, token{kind: tokenString, text: input[i+1 : i+1+end], pos: i})
			i += end + 2

		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentRune(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: input[start:i], pos: start})

		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(input[i:], op) {
					tokens = append(tokens, token{kind: tokenOp, text: op, pos: i})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, &SyntaxError{Input: input, Pos: i, Message: fmt.Sprintf("unexpected character %q", c)}
			}
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentRune(c rune) bool {
	return c == '_' || c == '.' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
