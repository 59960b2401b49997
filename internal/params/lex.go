// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package params

import (
	"unicode"
	"unicode/utf8"
)

// token types
type tokType int

const (
	tokEOF tokType = iota
	tokIdent
	tokEqual
	tokComma
	tokValue
	tokRaw
)

type token struct {
	typ   tokType
	pos   int
	value string
}

type stateFn func(l *lexer) stateFn

// lexer splits a parameter string into tokens. Identifiers are only lexed at
// the start of a key=value pair, anything after '=' up to the next comma or
// white space is a value.
//
type lexer struct {
	input string
	start int
	pos   int
	width int
	toks  []token
	key   bool // expecting a key
}

func lex(input string) []token {
	l := &lexer{input: input, key: true}
	for state := lexInit; state != nil; {
		state = state(l)
	}
	return l.toks
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return utf8.RuneError
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	l.width = w
	return r
}

func (l *lexer) backup() { l.pos -= l.width }

func (l *lexer) emit(t tokType) {
	l.toks = append(l.toks, token{typ: t, pos: l.start, value: l.input[l.start:l.pos]})
	l.start = l.pos
}

func (l *lexer) ignore() { l.start = l.pos }

func lexInit(l *lexer) stateFn {
	r := l.next()
	switch {
	case l.width == 0:
		l.emit(tokEOF)
		return nil
	case unicode.IsSpace(r):
		l.ignore()
	case r == ',':
		l.emit(tokComma)
		l.key = true
	case r == '=':
		l.emit(tokEqual)
		l.key = false
		return lexValue
	case l.key && (unicode.IsLetter(r) || r == '_'):
		return lexIdent
	default:
		l.emit(tokRaw)
		l.emit(tokEOF)
		return nil
	}
	return lexInit
}

func lexIdent(l *lexer) stateFn {
	for {
		r := l.next()
		if l.width == 0 || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-') {
			l.backup()
			break
		}
	}
	l.emit(tokIdent)
	return lexInit
}

func lexValue(l *lexer) stateFn {
	for {
		r := l.next()
		if l.width == 0 || r == ',' || unicode.IsSpace(r) {
			l.backup()
			break
		}
	}
	if l.pos > l.start {
		l.emit(tokValue)
	}
	l.key = true
	return lexInit
}
