package program

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Lexer", func() {
	It("should split words and record 1-based positions", func() {
		tokens, err := Lex("a.tn", strings.NewReader("1 2 +\n  DUMP"))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(Equal([]Token{
			{File: "a.tn", Line: 1, Col: 1, Text: "1"},
			{File: "a.tn", Line: 1, Col: 3, Text: "2"},
			{File: "a.tn", Line: 1, Col: 5, Text: "+"},
			{File: "a.tn", Line: 2, Col: 3, Text: "DUMP"},
		}))
	})

	It("should drop comments up to the end of the line only", func() {
		src := "1 // 2 3\n4 //5\n// whole line\n\t6"
		tokens, err := Lex("c.tn", strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())

		var words []string
		for _, tok := range tokens {
			words = append(words, tok.Text)
		}
		Expect(words).To(Equal([]string{"1", "4", "6"}))
		Expect(tokens[2].Line).To(Equal(4))
		Expect(tokens[2].Col).To(Equal(2))
	})

	It("should treat a comment glued to a word as a comment", func() {
		tokens, err := Lex("g.tn", strings.NewReader("DUMP//note"))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(HaveLen(1))
		Expect(tokens[0].Text).To(Equal("DUMP"))
	})

	It("should read lines longer than a megabyte", func() {
		src := strings.Repeat("1 DUMP ", 200000)
		Expect(len(src)).To(BeNumerically(">", 1<<20))

		tokens, err := Lex("long.tn", strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(HaveLen(400000))
		Expect(tokens[len(tokens)-1]).To(Equal(Token{
			File: "long.tn", Line: 1, Col: len(src) - 4, Text: "DUMP",
		}))

		prog, err := LoadProgram("long.tn", strings.NewReader(src), BuildOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Len()).To(Equal(400000))
	})

	It("should strip line endings", func() {
		tokens, err := Lex("crlf.tn", strings.NewReader("1\r\n2 DUMP\r\n"))
		Expect(err).NotTo(HaveOccurred())

		var words []string
		for _, tok := range tokens {
			words = append(words, tok.Text)
		}
		Expect(words).To(Equal([]string{"1", "2", "DUMP"}))
		Expect(tokens[2].Line).To(Equal(2))
	})

	It("should return nothing for an empty source", func() {
		tokens, err := Lex("e.tn", strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(BeEmpty())
	})
})
