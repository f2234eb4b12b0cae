package opam

import (
	"fmt"
	"strings"

	"github.com/brycenichols/ocaml.org/users"
)

// Parse interprets the raw bytes of an opam definition file and returns the
// package metadata. Malformed input fails with a *ParseError.
//
// The parser covers the fields the site displays: synopsis, description,
// maintainer, authors, license, homepage, tags, the three dependency
// relations, and the url section. Unknown fields are skipped without
// interpretation.
func Parse(raw []byte) (*Metadata, error) {
	toks, err := lex(raw)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	meta := &Metadata{Synopsis: DefaultSynopsis}

	for !p.at(tokEOF) {
		field, ok := p.accept(tokIdent)
		if !ok {
			return nil, p.errorf("expected field name, got %q", p.peek().text)
		}

		switch {
		case p.at(tokColon):
			p.next()
			if err := p.parseField(meta, field.text); err != nil {
				return nil, err
			}
		case p.at(tokLBrace):
			if field.text == "url" {
				if err := p.parseURLSection(meta); err != nil {
					return nil, err
				}
			} else if err := p.skipBlock(tokLBrace, tokRBrace); err != nil {
				return nil, err
			}
		case p.at(tokString):
			// Named section such as `extra-source "patch" { ... }`.
			p.next()
			if !p.at(tokLBrace) {
				return nil, p.errorf("expected section body after %q", field.text)
			}
			if err := p.skipBlock(tokLBrace, tokRBrace); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("expected ':' or section after %q", field.text)
		}
	}

	return meta, nil
}

func (p *parser) parseField(meta *Metadata, field string) error {
	switch field {
	case "synopsis":
		s, err := p.parseString()
		if err != nil {
			return err
		}
		if strings.TrimSpace(s) != "" {
			meta.Synopsis = strings.TrimSpace(s)
		}
		return nil

	case "description":
		s, err := p.parseString()
		if err != nil {
			return err
		}
		meta.Description = strings.TrimSpace(s)
		return nil

	case "maintainer":
		raws, err := p.parseStringOrList()
		if err != nil {
			return err
		}
		meta.Maintainers = fallbackUsers(raws)
		return nil

	case "authors", "author":
		raws, err := p.parseStringOrList()
		if err != nil {
			return err
		}
		meta.Authors = fallbackUsers(raws)
		return nil

	case "license":
		raws, err := p.parseStringOrList()
		if err != nil {
			return err
		}
		meta.License = joinLicenses(raws)
		return nil

	case "homepage":
		raws, err := p.parseStringOrList()
		if err != nil {
			return err
		}
		meta.Homepage = raws
		return nil

	case "tags":
		raws, err := p.parseStringOrList()
		if err != nil {
			return err
		}
		meta.Tags = raws
		return nil

	case "depends":
		formulas, err := p.parsePackageList()
		if err != nil {
			return err
		}
		meta.Dependencies = FlattenAll(formulas)
		return nil

	case "depopts":
		formulas, err := p.parsePackageList()
		if err != nil {
			return err
		}
		meta.Depopts = FlattenAll(formulas)
		return nil

	case "conflicts":
		formulas, err := p.parsePackageList()
		if err != nil {
			return err
		}
		meta.Conflicts = FlattenAll(formulas)
		return nil

	default:
		return p.skipValue()
	}
}

func (p *parser) parseURLSection(meta *Metadata) error {
	if _, ok := p.accept(tokLBrace); !ok {
		return p.errorf("expected '{' after url")
	}

	src := &Source{}
	for !p.at(tokRBrace) {
		field, ok := p.accept(tokIdent)
		if !ok {
			return p.errorf("expected url field, got %q", p.peek().text)
		}
		if _, ok := p.accept(tokColon); !ok {
			return p.errorf("expected ':' after url field %q", field.text)
		}

		switch field.text {
		case "src", "archive", "http", "local", "git":
			s, err := p.parseString()
			if err != nil {
				return err
			}
			src.URL = s
		case "checksum":
			sums, err := p.parseStringOrList()
			if err != nil {
				return err
			}
			src.Checksums = sums
		default:
			if err := p.skipValue(); err != nil {
				return err
			}
		}
	}
	p.next() // consume '}'

	if src.URL != "" || len(src.Checksums) > 0 {
		meta.Source = src
	}
	return nil
}

// parsePackageList parses the body of a depends/depopts/conflicts field:
// either a bracketed conjunction list or a single package atom.
func (p *parser) parsePackageList() ([]*PackageFormula, error) {
	if _, ok := p.accept(tokLBracket); !ok {
		f, err := p.parsePackageGroup()
		if err != nil {
			return nil, err
		}
		return []*PackageFormula{f}, nil
	}

	var formulas []*PackageFormula
	for !p.at(tokRBracket) {
		if p.at(tokEOF) {
			return nil, p.errorf("unterminated dependency list")
		}
		f, err := p.parsePackageGroup()
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	p.next() // consume ']'
	return formulas, nil
}

// parsePackageGroup parses one list element: a package atom or a
// parenthesized disjunction/conjunction of elements.
func (p *parser) parsePackageGroup() (*PackageFormula, error) {
	left, err := p.parsePackageOperand()
	if err != nil {
		return nil, err
	}

	for p.at(tokPipe) || p.at(tokAmp) {
		op := p.next()
		right, err := p.parsePackageOperand()
		if err != nil {
			return nil, err
		}
		if op.kind == tokPipe {
			left = OrPkg(left, right)
		} else {
			left = AndPkg(left, right)
		}
	}
	return left, nil
}

func (p *parser) parsePackageOperand() (*PackageFormula, error) {
	if _, ok := p.accept(tokLParen); ok {
		f, err := p.parsePackageGroup()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRParen); !ok {
			return nil, p.errorf("expected ')' in dependency group")
		}
		return f, nil
	}

	name, ok := p.accept(tokString)
	if !ok {
		return nil, p.errorf("expected package name, got %q", p.peek().text)
	}

	var constraint *Formula
	if _, ok := p.accept(tokLBrace); ok {
		var err error
		constraint, err = p.parseConstraintFormula()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRBrace); !ok {
			return nil, p.errorf("expected '}' after constraint")
		}
	}

	return PackageAtom(name.text, constraint), nil
}

// parseConstraintFormula parses a constraint formula with the usual
// precedence: '&' binds tighter than '|'.
func (p *parser) parseConstraintFormula() (*Formula, error) {
	left, err := p.parseConstraintConjunction()
	if err != nil {
		return nil, err
	}
	for p.at(tokPipe) {
		p.next()
		right, err := p.parseConstraintConjunction()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *parser) parseConstraintConjunction() (*Formula, error) {
	left, err := p.parseConstraintTerm()
	if err != nil {
		return nil, err
	}
	for p.at(tokAmp) {
		p.next()
		right, err := p.parseConstraintTerm()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

func (p *parser) parseConstraintTerm() (*Formula, error) {
	switch {
	case p.at(tokLParen):
		p.next()
		f, err := p.parseConstraintFormula()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRParen); !ok {
			return nil, p.errorf("expected ')' in constraint")
		}
		return f, nil

	case p.at(tokRelop):
		relop := p.next()
		if s, ok := p.accept(tokString); ok {
			return VersionConstraint(relop.text, Version(s.text)), nil
		}
		if id, ok := p.accept(tokIdent); ok {
			// Comparison against a variable, e.g. `>= version`.
			return FilterConstraint(relop.text + " " + id.text), nil
		}
		return nil, p.errorf("expected version after %q", relop.text)

	case p.at(tokBang):
		p.next()
		id, ok := p.accept(tokIdent)
		if !ok {
			return nil, p.errorf("expected filter identifier after '!'")
		}
		return FilterConstraint("!" + id.text), nil

	case p.at(tokString):
		// Bare version string is shorthand for equality.
		s := p.next()
		return VersionConstraint("=", Version(s.text)), nil

	case p.at(tokIdent):
		id := p.next()
		if p.at(tokRelop) {
			relop := p.next()
			if s, ok := p.accept(tokString); ok {
				return FilterConstraint(id.text + " " + relop.text + ` "` + s.text + `"`), nil
			}
			if rid, ok := p.accept(tokIdent); ok {
				return FilterConstraint(id.text + " " + relop.text + " " + rid.text), nil
			}
			return nil, p.errorf("expected operand after %q %s", id.text, relop.text)
		}
		return FilterConstraint(id.text), nil

	default:
		return nil, p.errorf("unexpected token %q in constraint", p.peek().text)
	}
}

func (p *parser) parseString() (string, error) {
	tok, ok := p.accept(tokString)
	if !ok {
		return "", p.errorf("expected string, got %q", p.peek().text)
	}
	return tok.text, nil
}

// parseStringOrList accepts either a single string or a bracketed list of
// strings and identifiers.
func (p *parser) parseStringOrList() ([]string, error) {
	if tok, ok := p.accept(tokString); ok {
		return []string{tok.text}, nil
	}
	if _, ok := p.accept(tokLBracket); !ok {
		if tok, ok := p.accept(tokIdent); ok {
			return []string{tok.text}, nil
		}
		return nil, p.errorf("expected string or list, got %q", p.peek().text)
	}

	var out []string
	for !p.at(tokRBracket) {
		switch {
		case p.at(tokString), p.at(tokIdent):
			out = append(out, p.next().text)
		case p.at(tokEOF):
			return nil, p.errorf("unterminated list")
		default:
			return nil, p.errorf("unexpected token %q in list", p.peek().text)
		}
	}
	p.next() // consume ']'
	return out, nil
}

// skipValue consumes one field value without interpreting it: a single
// term, or several terms joined by comparison and boolean operators (the
// shape of filter expressions such as `os != "macos"`).
func (p *parser) skipValue() error {
	if err := p.skipTerm(); err != nil {
		return err
	}
	for {
		switch p.peek().kind {
		case tokRelop, tokAmp, tokPipe:
			p.next()
			if err := p.skipTerm(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// skipTerm consumes one value term: an optional '!' prefix, then a string,
// identifier, list or parenthesized group, then an optional filter block.
func (p *parser) skipTerm() error {
	p.accept(tokBang)
	switch p.peek().kind {
	case tokString, tokIdent:
		p.next()
	case tokLBracket:
		if err := p.skipBlock(tokLBracket, tokRBracket); err != nil {
			return err
		}
	case tokLParen:
		if err := p.skipBlock(tokLParen, tokRParen); err != nil {
			return err
		}
	default:
		return p.errorf("unexpected token %q", p.peek().text)
	}
	if p.at(tokLBrace) {
		return p.skipBlock(tokLBrace, tokRBrace)
	}
	return nil
}

// skipBlock consumes a balanced open/close token pair, tracking all three
// bracket kinds for nesting.
func (p *parser) skipBlock(open, close tokKind) error {
	if _, ok := p.accept(open); !ok {
		return p.errorf("expected block")
	}
	depth := 1
	for depth > 0 {
		switch p.peek().kind {
		case tokEOF:
			return p.errorf("unterminated block")
		case tokLBrace, tokLBracket, tokLParen:
			depth++
		case tokRBrace, tokRBracket, tokRParen:
			depth--
		}
		p.next()
	}
	return nil
}

func fallbackUsers(raws []string) []users.User {
	out := make([]users.User, 0, len(raws))
	for _, raw := range raws {
		out = append(out, users.Fallback(raw))
	}
	return out
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind tokKind) bool {
	return p.peek().kind == kind
}

func (p *parser) accept(kind tokKind) (token, bool) {
	if p.at(kind) {
		return p.next(), true
	}
	return token{}, false
}

func (p *parser) errorf(format string, args ...any) error {
	line := p.peek().line
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
