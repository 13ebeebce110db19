package dsl

import (
	"strings"
	"unicode"
)

// TokenKind identifies the type of a token.
type TokenKind int

const (
	TokenWord    TokenKind = iota // any run of non-space characters
	TokenArrow                    // ->
	TokenQuoted                   // "..." (Literal excludes the quotes)
	TokenBracket                  // [...] (Literal excludes the brackets)
)

var tokenNames = map[TokenKind]string{
	TokenWord:    "word",
	TokenArrow:   "'->'",
	TokenQuoted:  "string",
	TokenBracket: "bracket",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is a single lexical unit of a statement.
type Token struct {
	Kind    TokenKind
	Literal string
}

// Tokenize splits a coordinate-stripped statement into tokens. Quoted
// strings and bracketed markers keep their inner whitespace. An unterminated
// quote or bracket runs to the end of the input.
func Tokenize(s string) []Token {
	var toks []Token
	r := []rune(s)
	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '"':
			j := indexRune(r, i+1, '"')
			toks = append(toks, Token{Kind: TokenQuoted, Literal: string(r[i+1 : j])})
			i = j + 1
		case c == '[':
			j := indexRune(r, i+1, ']')
			toks = append(toks, Token{Kind: TokenBracket, Literal: strings.TrimSpace(string(r[i+1 : j]))})
			i = j + 1
		default:
			j := i
			for j < len(r) && !unicode.IsSpace(r[j]) && r[j] != '"' && r[j] != '[' {
				j++
			}
			word := string(r[i:j])
			kind := TokenWord
			if word == "->" {
				kind = TokenArrow
			}
			toks = append(toks, Token{Kind: kind, Literal: word})
			i = j
		}
	}
	return toks
}

// indexRune returns the index of the first c at or after from, or len(r).
func indexRune(r []rune, from int, c rune) int {
	for j := from; j < len(r); j++ {
		if r[j] == c {
			return j
		}
	}
	return len(r)
}
