package fam

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned when a declaration file does not follow the
	// restricted constructor grammar.
	ErrMalformed = errors.New("malformed application declaration")
	// ErrDuplicateID is returned when two declarations share an appid.
	ErrDuplicateID = errors.New("duplicate application id")
)

// Declaration files are Python-flavored, but they are never executed here.
// The grammar accepted is a fixed constructor set (App, ExtFile, Lib) with
// keyword arguments built from string, integer, boolean, tuple and list
// literals plus the FlipperAppType constants. Anything else is rejected.
const (
	appConstructor     = "App"
	extFileConstructor = "ExtFile"
	libConstructor     = "Lib"

	appTypeConstantPrefix = "FlipperAppType."
)

// ParseFile reads and parses a single application.fam file.
func ParseFile(path string) ([]*Application, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration: %w", err)
	}

	return Parse(string(src), path)
}

// Parse parses declaration source. The path is used in errors and recorded
// on the resulting targets.
func Parse(src, path string) ([]*Application, error) {
	p := &parser{lex: newLexer(src), path: path}

	apps, err := p.parseFile()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformed, path, err)
	}

	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: %s: no App declarations", ErrMalformed, path)
	}

	return apps, nil
}

// value is a literal produced by the restricted expression grammar.
type value struct {
	kind     valueKind
	str      string
	num      int
	boolean  bool
	list     []value
	callName string
}

type valueKind int

const (
	valString valueKind = iota
	valInt
	valBool
	valNone
	valList
	valCall
	valConstant
)

type parser struct {
	lex  *lexer
	path string
}

// parseFile accepts a sequence of top-level App(...) calls.
func (p *parser) parseFile() ([]*Application, error) {
	var apps []*Application

	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokEOF {
			return apps, nil
		}

		if tok.kind != tokIdent || tok.text != appConstructor {
			return nil, fmt.Errorf("line %d: only %s declarations are allowed at top level, got %q",
				tok.line, appConstructor, tok.text)
		}

		app, err := p.parseApp()
		if err != nil {
			return nil, err
		}

		apps = append(apps, app)
	}
}

// parseApp parses the argument list of an App constructor into a target.
func (p *parser) parseApp() (*Application, error) {
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}

	app := newApplication(p.path)
	for _, arg := range args {
		if err := applyField(app, arg.name, arg.val); err != nil {
			return nil, err
		}
	}

	if app.ID == "" {
		return nil, fmt.Errorf("appid is required")
	}

	if app.Type == "" {
		return nil, fmt.Errorf("apptype is required for %q", app.ID)
	}

	return app, nil
}

type kwarg struct {
	name string
	val  value
}

// parseCallArgs consumes "(" kwarg {"," kwarg} [","] ")". Positional
// arguments are not accepted: every field must be named.
func (p *parser) parseCallArgs() ([]kwarg, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}

	var args []kwarg

	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokRParen {
			return args, nil
		}

		if tok.kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected argument name, got %q", tok.line, tok.text)
		}

		if err := p.expect(tokAssign); err != nil {
			return nil, err
		}

		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, kwarg{name: tok.text, val: val})

		tok, err = p.lex.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokComma:
			// Trailing commas are allowed.
		case tokRParen:
			return args, nil
		default:
			return nil, fmt.Errorf("line %d: expected ',' or ')', got %q", tok.line, tok.text)
		}
	}
}

// parseExpr parses a term, folding integer products such as 4 * 1024.
func (p *parser) parseExpr() (value, error) {
	left, err := p.parseTerm()
	if err != nil {
		return value{}, err
	}

	for {
		tok, err := p.lex.peek()
		if err != nil {
			return value{}, err
		}

		if tok.kind != tokStar {
			return left, nil
		}

		p.lex.discard()

		right, err := p.parseTerm()
		if err != nil {
			return value{}, err
		}

		if left.kind != valInt || right.kind != valInt {
			return value{}, fmt.Errorf("line %d: '*' is only allowed between integers", tok.line)
		}

		left = value{kind: valInt, num: left.num * right.num}
	}
}

func (p *parser) parseTerm() (value, error) {
	tok, err := p.lex.next()
	if err != nil {
		return value{}, err
	}

	switch tok.kind {
	case tokString:
		// Adjacent string literals concatenate, as in the source format.
		out := tok.text

		for {
			nxt, err := p.lex.peek()
			if err != nil {
				return value{}, err
			}

			if nxt.kind != tokString {
				break
			}

			out += nxt.text

			p.lex.discard()
		}

		return value{kind: valString, str: out}, nil

	case tokInt:
		return value{kind: valInt, num: tok.num}, nil

	case tokMinus:
		nxt, err := p.lex.next()
		if err != nil {
			return value{}, err
		}

		if nxt.kind != tokInt {
			return value{}, fmt.Errorf("line %d: expected integer after '-'", tok.line)
		}

		return value{kind: valInt, num: -nxt.num}, nil

	case tokLBracket:
		return p.parseSequence(tokRBracket)

	case tokLParen:
		return p.parseSequence(tokRParen)

	case tokIdent:
		return p.parseIdentTerm(tok)

	default:
		return value{}, fmt.Errorf("line %d: unexpected %q", tok.line, tok.text)
	}
}

// parseIdentTerm handles True/False/None, FlipperAppType constants and the
// nested ExtFile/Lib constructors.
func (p *parser) parseIdentTerm(tok token) (value, error) {
	switch tok.text {
	case "True":
		return value{kind: valBool, boolean: true}, nil
	case "False":
		return value{kind: valBool, boolean: false}, nil
	case "None":
		return value{kind: valNone}, nil
	}

	if strings.HasPrefix(tok.text, appTypeConstantPrefix) {
		return value{kind: valConstant, str: tok.text}, nil
	}

	if tok.text == extFileConstructor || tok.text == libConstructor {
		// Arguments are grammar-checked but not retained: these describe
		// build inputs the bundler has no use for.
		if _, err := p.parseCallArgs(); err != nil {
			return value{}, err
		}

		return value{kind: valCall, callName: tok.text}, nil
	}

	return value{}, fmt.Errorf("line %d: unknown identifier %q", tok.line, tok.text)
}

// parseSequence parses the remainder of a list or tuple literal.
func (p *parser) parseSequence(closing tokenKind) (value, error) {
	out := value{kind: valList}

	for {
		tok, err := p.lex.peek()
		if err != nil {
			return value{}, err
		}

		if tok.kind == closing {
			p.lex.discard()
			return out, nil
		}

		item, err := p.parseExpr()
		if err != nil {
			return value{}, err
		}

		out.list = append(out.list, item)

		tok, err = p.lex.next()
		if err != nil {
			return value{}, err
		}

		if tok.kind == closing {
			return out, nil
		}

		if tok.kind != tokComma {
			return value{}, fmt.Errorf("line %d: expected ',' or closing bracket, got %q", tok.line, tok.text)
		}
	}
}

func (p *parser) expect(kind tokenKind) error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}

	if tok.kind != kind {
		return fmt.Errorf("line %d: unexpected %q", tok.line, tok.text)
	}

	return nil
}

// applyField assigns one keyword argument to the target. Unknown fields are
// accepted as long as their values fit the grammar: the declaration format
// grows fields faster than the bundler needs them.
func applyField(app *Application, name string, val value) error {
	switch name {
	case "appid":
		return assignString(&app.ID, name, val)
	case "apptype":
		if val.kind != valConstant || !strings.HasPrefix(val.str, appTypeConstantPrefix) {
			return fmt.Errorf("apptype must be a %s constant", strings.TrimSuffix(appTypeConstantPrefix, "."))
		}

		t, ok := appTypeByConstant[strings.TrimPrefix(val.str, appTypeConstantPrefix)]
		if !ok {
			return fmt.Errorf("unknown apptype %q", val.str)
		}

		app.Type = t

		return nil
	case "name":
		return assignString(&app.Name, name, val)
	case "entry_point":
		return assignString(&app.EntryPoint, name, val)
	case "stack_size":
		return assignInt(&app.StackSize, name, val)
	case "order":
		return assignInt(&app.Order, name, val)
	case "requires":
		return assignStringList(&app.Requires, name, val)
	case "targets":
		return assignStringList(&app.Targets, name, val)
	case "fap_version":
		return assignVersion(&app.Version, val)
	case "fap_icon":
		return assignString(&app.Icon, name, val)
	case "fap_category":
		return assignString(&app.Category, name, val)
	case "fap_description":
		return assignString(&app.Description, name, val)
	case "fap_author":
		return assignString(&app.Author, name, val)
	case "fap_weburl":
		return assignString(&app.WebURL, name, val)
	case "fap_icon_assets":
		return assignString(&app.IconAssets, name, val)
	default:
		return nil
	}
}

func assignString(dst *string, name string, val value) error {
	if val.kind != valString {
		return fmt.Errorf("%s must be a string", name)
	}

	*dst = val.str

	return nil
}

func assignInt(dst *int, name string, val value) error {
	if val.kind != valInt {
		return fmt.Errorf("%s must be an integer", name)
	}

	*dst = val.num

	return nil
}

func assignStringList(dst *[]string, name string, val value) error {
	if val.kind != valList {
		return fmt.Errorf("%s must be a list of strings", name)
	}

	out := make([]string, 0, len(val.list))

	for _, item := range val.list {
		if item.kind != valString {
			return fmt.Errorf("%s must be a list of strings", name)
		}

		out = append(out, item.str)
	}

	*dst = out

	return nil
}

// assignVersion accepts either an integer tuple (1, 2) or a dotted string
// "1.2", both of which occur in declaration files in the wild.
func assignVersion(dst *[]int, val value) error {
	switch val.kind {
	case valList:
		out := make([]int, 0, len(val.list))

		for _, item := range val.list {
			if item.kind != valInt {
				return errors.New("fap_version tuple must contain integers")
			}

			out = append(out, item.num)
		}

		if len(out) == 0 {
			return errors.New("fap_version must not be empty")
		}

		*dst = out

		return nil

	case valString:
		parts := strings.Split(val.str, ".")
		out := make([]int, 0, len(parts))

		for _, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil {
				return fmt.Errorf("fap_version component %q is not an integer", part)
			}

			out = append(out, n)
		}

		*dst = out

		return nil

	default:
		return errors.New("fap_version must be an integer tuple or a dotted string")
	}
}

// joinInts renders an integer tuple with the given separator.
func joinInts(v []int, sep string) string {
	parts := make([]string, 0, len(v))
	for _, n := range v {
		parts = append(parts, strconv.Itoa(n))
	}

	return strings.Join(parts, sep)
}
