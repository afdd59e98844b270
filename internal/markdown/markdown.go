package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrDisallowedElement is returned when content uses a markup construct
// outside the restricted subset. The wrapped message names the construct.
var ErrDisallowedElement = errors.New("markdown element is not allowed")

// maxHeadingDepth is the deepest heading level the catalog renders.
const maxHeadingDepth = 2

var (
	// entityPattern matches named and numeric HTML entities.
	entityPattern = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]*|#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6});`)
	// refDefPattern matches reference-style link definitions.
	refDefPattern = regexp.MustCompile(`(?m)^ {0,3}\[[^\]]+\]:`)
	// bracketPattern finds bracketed spans; spans not followed by "(" are
	// reference-style usages.
	bracketPattern = regexp.MustCompile(`\[[^\[\]]*\]`)
	// deepHeaderPattern matches ATX markers beyond the allowed depth, with
	// or without the space the CommonMark spec requires.
	deepHeaderPattern = regexp.MustCompile(`(?m)^ {0,3}#{3,}`)
	// setextUnderlinePattern matches a setext heading underline line.
	setextUnderlinePattern = regexp.MustCompile(`^ {0,3}(=+|-+) *$`)
)

// Check validates content against the restricted markup subset. Allowed:
// paragraphs, emphasis and strong emphasis, ordered and unordered lists
// (nesting included), headings up to level 2, and plain inline links.
// Everything else fails with ErrDisallowedElement naming the first
// offending construct.
func Check(content string) error {
	if err := scanRaw(content); err != nil {
		return err
	}

	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	return ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if err := checkNode(n, source); err != nil {
			return ast.WalkStop, err
		}

		return ast.WalkContinue, nil
	})
}

func checkNode(n ast.Node, source []byte) error {
	switch n.Kind() {
	case ast.KindCodeSpan:
		return disallowed("code span")
	case ast.KindImage:
		return disallowed("image")
	case ast.KindRawHTML, ast.KindHTMLBlock:
		return disallowed("raw HTML")
	case ast.KindCodeBlock:
		return disallowed("indented code block")
	case ast.KindFencedCodeBlock:
		return disallowed("fenced code block")
	case ast.KindThematicBreak:
		return disallowed("horizontal rule")
	case ast.KindBlockquote:
		return disallowed("blockquote")
	case ast.KindAutoLink:
		return checkAutoLink(n.(*ast.AutoLink), source)
	case ast.KindHeading:
		if n.(*ast.Heading).Level > maxHeadingDepth {
			return disallowed(fmt.Sprintf("heading deeper than level %d", maxHeadingDepth))
		}
	}

	return nil
}

// checkAutoLink keeps URL autolinks but rejects mail autolinks, matching
// the catalog's published grammar.
func checkAutoLink(link *ast.AutoLink, source []byte) error {
	if link.AutoLinkType == ast.AutoLinkEmail {
		return disallowed("mail autolink")
	}

	if strings.HasPrefix(strings.ToLower(string(link.URL(source))), "mailto:") {
		return disallowed("mail autolink")
	}

	return nil
}

// scanRaw rejects constructs that the parser would otherwise resolve or
// consume before the AST stage: entities, reference definitions and
// reference-style links, image markers, over-deep ATX markers written
// without the space CommonMark requires, and setext underlines.
func scanRaw(content string) error {
	if entityPattern.MatchString(content) {
		return disallowed("entity")
	}

	if strings.Contains(content, "![") {
		return disallowed("image")
	}

	if refDefPattern.MatchString(content) {
		return disallowed("reference definition")
	}

	for _, loc := range bracketPattern.FindAllStringIndex(content, -1) {
		if !strings.HasPrefix(content[loc[1]:], "(") {
			return disallowed("reference link")
		}
	}

	if deepHeaderPattern.MatchString(content) {
		return disallowed(fmt.Sprintf("heading deeper than level %d", maxHeadingDepth))
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if i > 0 && setextUnderlinePattern.MatchString(line) && strings.TrimSpace(lines[i-1]) != "" {
			return disallowed("setext heading")
		}
	}

	return nil
}

func disallowed(element string) error {
	return fmt.Errorf("%w: %s", ErrDisallowedElement, element)
}
