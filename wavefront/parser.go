package wavefront

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_KEYWORD = iota
	TOKEN_NUMBER
	TOKEN_SLASH
	TOKEN_NAME
	TOKEN_NEWLINE
	TOKEN_COMMENT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`(v|vn|vt|vp|f|o|g|s|usemtl|mtllib)`), getToken(TOKEN_KEYWORD))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+([eE][\+\-]?[0-9]+)?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`/`), getToken(TOKEN_SLASH))
	lexer.Add([]byte(`#[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`(\n|\r|\n\r)+`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`[ \t]+`), skip)
	lexer.Add([]byte(`[^ \t\r\n/]+`), getToken(TOKEN_NAME))
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// faceRef is one corner of an f statement as written, 1-based and
// possibly negative, zero for an absent texcoord or normal slot.
type faceRef struct {
	V int
	T int
	N int
}

type statement struct {
	Keyword string
	Numbers []float32
	Name    string
	Refs    []faceRef
	Line    int
}

func parseStatements(text []byte) ([]*statement, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	statements := make([]*statement, 0, 256)

	var current *statement
	var nameStart, nameEnd int
	var refSlashes int
	var prevSlash bool

	flush := func() {
		if current == nil {
			return
		}
		if nameEnd > nameStart {
			current.Name = strings.TrimSpace(string(text[nameStart:nameEnd]))
		}
		statements = append(statements, current)
		current = nil
	}

	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)

		switch tok.Type {
		case TOKEN_NEWLINE:
			flush()
			continue
		case TOKEN_COMMENT:
			continue
		}

		if current == nil {
			current = &statement{Keyword: string(tok.Lexeme), Line: tok.StartLine}
			nameStart, nameEnd = 0, 0
			refSlashes, prevSlash = 0, false
			continue
		}

		switch current.Keyword {
		case "v", "vn", "vt", "vp":
			if tok.Type != TOKEN_NUMBER {
				return nil, errors.Errorf("Unexpected %q in %q statement on line %v",
					tok.Lexeme, current.Keyword, tok.StartLine)
			}
			f, err := strconv.ParseFloat(string(tok.Lexeme), 32)
			if err != nil {
				return nil, errors.Errorf("Unknown number format on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			current.Numbers = append(current.Numbers, float32(f))
		case "f":
			switch tok.Type {
			case TOKEN_SLASH:
				if len(current.Refs) == 0 {
					return nil, errors.Errorf("Face index missing on line %v", tok.StartLine)
				}
				refSlashes++
				if refSlashes > 2 {
					return nil, errors.Errorf("Malformed face corner on line %v", tok.StartLine)
				}
				prevSlash = true
			case TOKEN_NUMBER:
				index, err := strconv.ParseInt(string(tok.Lexeme), 10, 32)
				if err != nil {
					return nil, errors.Errorf("Bad face index on line %v (%q)", tok.StartLine, tok.Lexeme)
				}
				if !prevSlash {
					current.Refs = append(current.Refs, faceRef{V: int(index)})
					refSlashes = 0
				} else if refSlashes == 1 {
					current.Refs[len(current.Refs)-1].T = int(index)
				} else {
					current.Refs[len(current.Refs)-1].N = int(index)
				}
				prevSlash = false
			default:
				return nil, errors.Errorf("Unexpected %q in face on line %v", tok.Lexeme, tok.StartLine)
			}
		case "o", "g", "s", "usemtl", "mtllib":
			if nameStart == 0 {
				nameStart = tok.TC
			}
			nameEnd = tok.TC + len(tok.Lexeme)
		}
	}
	flush()

	return statements, nil
}
