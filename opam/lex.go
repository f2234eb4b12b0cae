package opam

import "strings"

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokColon
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokAmp
	tokPipe
	tokBang
	tokRelop
)

type token struct {
	kind tokKind
	text string
	line int
}

// lex tokenizes a definition file. Comments (both `# ...` and `(* ... *)`)
// are discarded.
func lex(raw []byte) ([]token, error) {
	src := string(raw)
	var toks []token
	line := 1
	i := 0

	emit := func(kind tokKind, text string) {
		toks = append(toks, token{kind: kind, text: text, line: line})
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '(' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*)")
			if end < 0 {
				return nil, &ParseError{Line: line, Msg: "unterminated comment"}
			}
			line += strings.Count(src[i:i+2+end+2], "\n")
			i += 2 + end + 2
		case c == '"':
			text, consumed, newlines, err := lexString(src[i:], line)
			if err != nil {
				return nil, err
			}
			emit(tokString, text)
			line += newlines
			i += consumed
		case c == ':':
			emit(tokColon, ":")
			i++
		case c == '{':
			emit(tokLBrace, "{")
			i++
		case c == '}':
			emit(tokRBrace, "}")
			i++
		case c == '[':
			emit(tokLBracket, "[")
			i++
		case c == ']':
			emit(tokRBracket, "]")
			i++
		case c == '(':
			emit(tokLParen, "(")
			i++
		case c == ')':
			emit(tokRParen, ")")
			i++
		case c == '&':
			emit(tokAmp, "&")
			i++
		case c == '|':
			emit(tokPipe, "|")
			i++
		case c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				emit(tokRelop, src[i:i+2])
				i += 2
			} else {
				emit(tokRelop, string(c))
				i++
			}
		case c == '=':
			emit(tokRelop, "=")
			i++
		case c == '!':
			if i+1 < len(src) && src[i+1] == '=' {
				emit(tokRelop, "!=")
				i += 2
			} else {
				emit(tokBang, "!")
				i++
			}
		case isIdentByte(c):
			start := i
			for i < len(src) && isIdentByte(src[i]) {
				i++
			}
			emit(tokIdent, src[start:i])
		default:
			return nil, &ParseError{Line: line, Msg: "unexpected character " + string(c)}
		}
	}

	toks = append(toks, token{kind: tokEOF, line: line})
	return toks, nil
}

// lexString consumes a quoted string starting at src[0] == '"'. Both plain
// and triple-quoted strings are supported. Returns the unescaped text, the
// number of bytes consumed and the number of newlines crossed.
func lexString(src string, line int) (string, int, int, error) {
	if strings.HasPrefix(src, `"""`) {
		end := strings.Index(src[3:], `"""`)
		if end < 0 {
			return "", 0, 0, &ParseError{Line: line, Msg: "unterminated string"}
		}
		body := src[3 : 3+end]
		return body, 3 + end + 3, strings.Count(body, "\n"), nil
	}

	var b strings.Builder
	newlines := 0
	i := 1
	for i < len(src) {
		switch src[i] {
		case '"':
			return b.String(), i + 1, newlines, nil
		case '\\':
			if i+1 >= len(src) {
				return "", 0, 0, &ParseError{Line: line, Msg: "unterminated string escape"}
			}
			switch src[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\n':
				// Escaped newline continues the string.
				newlines++
			default:
				b.WriteByte(src[i+1])
			}
			i += 2
		case '\n':
			newlines++
			b.WriteByte('\n')
			i++
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return "", 0, 0, &ParseError{Line: line, Msg: "unterminated string"}
}

func isIdentByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_' || c == '+' || c == '.' || c == '~'
}
