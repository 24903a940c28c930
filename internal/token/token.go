package token

type TokenType string

// Token carries the lexeme as written plus the parsed literal value
// (string for identifiers, uint64 for integer literals).
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers and literals
	IDENT_UPPER = "IDENT_UPPER" // Traitor, Uwu, N
	IDENT_LOWER = "IDENT_LOWER" // u8, u32
	INT         = "INT"         // 12, 0xFF, 0b1010

	// Delimiters
	LBRACKET = "["
	RBRACKET = "]"
	COMMA    = ","
	COLON    = ":"
	ASSIGN   = "="
	MINUS    = "-"

	// Keywords
	INTERFACE = "INTERFACE"
	TYPE      = "TYPE"
	IMPL      = "IMPL"
	REQUIRE   = "REQUIRE"
	FOR       = "FOR"
)

var keywords = map[string]TokenType{
	"interface": INTERFACE,
	"type":      TYPE,
	"impl":      IMPL,
	"require":   REQUIRE,
	"for":       FOR,
}

// LookupIdent distinguishes keywords from plain lowercase identifiers.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT_LOWER
}
