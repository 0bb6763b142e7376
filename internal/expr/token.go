package expr

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	tokenEOF TokenType = iota
	tokenIllegal
	tokenIdent
	tokenNumber
	tokenPlus
	tokenMinus
	tokenAsterisk
	tokenSlash
	tokenLParen
	tokenRParen
)

// Token is a single lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset in the input
}

func (t TokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenPlus:
		return "+"
	case tokenMinus:
		return "-"
	case tokenAsterisk:
		return "*"
	case tokenSlash:
		return "/"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	default:
		return "illegal"
	}
}
