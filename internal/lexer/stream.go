package lexer

import (
	"github.com/veldt-lang/veldt/internal/token"
)

// TokenStream is a buffered view over a Lexer. The whole input is
// tokenized up front; Next past the end keeps returning EOF.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

func NewTokenStream(l *Lexer) *TokenStream {
	ts := &TokenStream{}
	for {
		tok := l.NextToken()
		ts.tokens = append(ts.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return ts
}

func (ts *TokenStream) Next() token.Token {
	if ts.pos >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	return tok
}

// Peek looks n tokens ahead without consuming; Peek(0) is the token
// Next would return.
func (ts *TokenStream) Peek(n int) token.Token {
	idx := ts.pos + n
	if idx >= len(ts.tokens) {
		return ts.tokens[len(ts.tokens)-1]
	}
	return ts.tokens[idx]
}

// Tokens exposes the underlying buffer. Callers must not modify it.
func (ts *TokenStream) Tokens() []token.Token {
	return ts.tokens
}
