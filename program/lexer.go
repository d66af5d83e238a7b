package program

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

const commentMarker = "//"

// Token is a whitespace separated word of the source together with its
// position. Line and Col are 1-based; Col counts characters.
type Token struct {
	File string
	Line int
	Col  int
	Text string
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", t.File, t.Line, t.Col, t.Text)
}

// LexFile reads and tokenizes the file at path.
func LexFile(path string) ([]Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Lex(path, f)
}

// Lex splits the source into tokens. A "//" starts a comment that runs to the
// end of the physical line.
func Lex(file string, r io.Reader) ([]Token, error) {
	var tokens []Token

	br := bufio.NewReader(r)

	line := 0
	for {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		if text == "" && err == io.EOF {
			break
		}

		line++
		if i := strings.Index(text, commentMarker); i >= 0 {
			text = text[:i]
		}
		tokens = append(tokens, lexLine(file, line, text)...)

		if err == io.EOF {
			break
		}
	}

	return tokens, nil
}

func lexLine(file string, line int, text string) []Token {
	var tokens []Token

	runes := []rune(text)
	col := 0
	for col < len(runes) {
		for col < len(runes) && unicode.IsSpace(runes[col]) {
			col++
		}

		start := col
		for col < len(runes) && !unicode.IsSpace(runes[col]) {
			col++
		}

		if start < col {
			tokens = append(tokens, Token{
				File: file,
				Line: line,
				Col:  start + 1,
				Text: string(runes[start:col]),
			})
		}
	}

	return tokens
}
