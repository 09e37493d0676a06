package kss

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/kssbuilder/internal/markdown"
)

// DefaultExtensions lists the stylesheet file types Traverse parses.
var DefaultExtensions = []string{".css", ".less", ".scss", ".sass", ".styl"}

// Options controls parsing.
type Options struct {
	Extensions []string
	Multiline  bool // parse /* */ blocks in addition to // runs
	Markdown   bool // render descriptions as markdown
}

// DefaultOptions mirrors the conventional KSS settings.
func DefaultOptions() Options {
	return Options{Extensions: DefaultExtensions, Multiline: true, Markdown: true}
}

// Warning describes a skipped or ignored comment block.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message) }

var (
	referenceLine   = regexp.MustCompile(`(?i)^styleguide\s+(\S+)$`)
	noReferenceLine = regexp.MustCompile(`(?i)^no\s+styleguide\s+reference\.?$`)
	modifierLine    = regexp.MustCompile(`^([.:\[]\S*)\s+-\s+(.*)$`)
	markupPrefix    = regexp.MustCompile(`(?i)^markup:`)
	deprecatedLine  = regexp.MustCompile(`(?i)^deprecated:`)
	experimentLine  = regexp.MustCompile(`(?i)^experimental:`)
	starDecoration  = regexp.MustCompile(`^\s*\*\s?`)
)

type commentBlock struct {
	line  int
	lines []string
}

// Parse extracts the documented sections of one stylesheet. Blocks without a
// valid reference are skipped; the ones that look like sections but carry a
// malformed reference are returned as warnings.
func Parse(src []byte, filename string, opts Options) ([]*Section, []Warning, error) {
	p := newBlockParser(opts)
	var (
		sections []*Section
		warnings []Warning
	)
	for _, block := range extractComments(string(src), opts.Multiline) {
		section, warn, err := p.parseBlock(block)
		if err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", filename, block.line, err)
		}
		if warn != "" {
			warnings = append(warnings, Warning{File: filename, Line: block.line, Message: warn})
			continue
		}
		if section == nil {
			continue
		}
		section.File = filename
		section.Line = block.line
		sections = append(sections, section)
	}
	return sections, warnings, nil
}

// extractComments returns /* */ blocks (when multiline) and runs of
// consecutive // lines, in source order, with comment decoration removed.
func extractComments(src string, multiline bool) []commentBlock {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(src, "\n")

	var blocks []commentBlock
	var run *commentBlock
	flushRun := func() {
		if run != nil {
			blocks = append(blocks, *run)
			run = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "//"):
			text := strings.TrimPrefix(trimmed, "//")
			text = strings.TrimPrefix(text, " ")
			if run == nil {
				run = &commentBlock{line: i + 1}
			}
			run.lines = append(run.lines, text)
		case multiline && strings.HasPrefix(trimmed, "/*"):
			flushRun()
			block := commentBlock{line: i + 1}
			body := trimDocblockOpener(strings.TrimPrefix(trimmed, "/*"))
			for {
				if end := strings.Index(body, "*/"); end >= 0 {
					block.lines = append(block.lines, strings.TrimRight(body[:end], "*"))
					break
				}
				block.lines = append(block.lines, body)
				i++
				if i >= len(lines) {
					break
				}
				body = lines[i]
			}
			block.lines = undecorate(block.lines)
			blocks = append(blocks, block)
		default:
			flushRun()
		}
	}
	flushRun()
	return blocks
}

// trimDocblockOpener drops the extra stars of a "/**" opener without eating
// the "*/" of a block that closes on the same line.
func trimDocblockOpener(body string) string {
	for strings.HasPrefix(body, "*") && !strings.HasPrefix(body, "*/") {
		body = body[1:]
	}
	return body
}

// undecorate strips leading "*" gutters from multiline comment lines, or the
// common indentation when the block has no gutter.
func undecorate(lines []string) []string {
	gutter := true
	for i, l := range lines {
		if i == 0 || strings.TrimSpace(l) == "" {
			continue
		}
		if !starDecoration.MatchString(l) {
			gutter = false
			break
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if gutter && i > 0 {
			l = starDecoration.ReplaceAllString(l, "")
		}
		out[i] = strings.TrimRight(l, " \t")
	}
	if !gutter {
		out = dedent(out)
	}
	out[0] = strings.TrimSpace(out[0])
	return out
}

func dedent(lines []string) []string {
	indent := -1
	for i, l := range lines {
		if i == 0 || strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
	}
	return lines
}

func paragraphs(lines []string) [][]string {
	var out [][]string
	var cur []string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

type blockParser struct {
	opts   Options
	block  *markdown.Renderer
	inline *markdown.Renderer
}

func newBlockParser(opts Options) *blockParser {
	p := &blockParser{opts: opts}
	if opts.Markdown {
		p.block = markdown.New(markdown.Options{})
		p.inline = markdown.New(markdown.Options{Inline: true})
	}
	return p
}

// parseBlock turns one comment into a Section. A nil section with an empty
// warning means the block is not documentation.
func (p *blockParser) parseBlock(block commentBlock) (*Section, string, error) {
	paras := paragraphs(block.lines)
	if len(paras) == 0 {
		return nil, "", nil
	}
	last := paras[len(paras)-1]
	refText := strings.TrimSpace(last[len(last)-1])
	if noReferenceLine.MatchString(refText) {
		return nil, "", nil
	}
	m := referenceLine.FindStringSubmatch(refText)
	if m == nil {
		return nil, "", nil
	}
	ref, ok := NormalizeReference(m[1])
	if !ok {
		return nil, fmt.Sprintf("invalid styleguide reference %q", m[1]), nil
	}

	s := &Section{Reference: ref}
	body := paras[:len(paras)-1]
	if len(last) > 1 {
		// reference on the last line of a paragraph
		body = append(body, last[:len(last)-1])
	}
	if len(body) > 0 {
		s.Header = joinTrimmed(body[0], " ")
		body = body[1:]
	}

	var description []string
	type rawModifier struct{ name, description string }
	var modifiers []rawModifier
	for _, para := range body {
		first := strings.TrimSpace(para[0])
		switch {
		case markupPrefix.MatchString(first):
			rest := strings.TrimSpace(first[len("markup:"):])
			lines := append([]string{}, para[1:]...)
			if rest != "" {
				lines = append([]string{rest}, lines...)
			}
			s.Markup = strings.TrimSpace(strings.Join(lines, "\n"))
		case isModifierParagraph(para):
			for _, line := range para {
				if mm := modifierLine.FindStringSubmatch(strings.TrimSpace(line)); mm != nil && !startsIndented(line) {
					modifiers = append(modifiers, rawModifier{name: mm[1], description: strings.TrimSpace(mm[2])})
					continue
				}
				prev := &modifiers[len(modifiers)-1]
				prev.description += " " + strings.TrimSpace(line)
			}
		default:
			if deprecatedLine.MatchString(first) {
				s.Deprecated = true
			}
			if experimentLine.MatchString(first) {
				s.Experimental = true
			}
			description = append(description, strings.Join(para, "\n"))
		}
	}

	var err error
	if s.Description, err = p.renderBlock(description); err != nil {
		return nil, "", err
	}
	for _, rm := range modifiers {
		desc, err := p.renderInline(rm.description)
		if err != nil {
			return nil, "", err
		}
		s.Modifiers = append(s.Modifiers, newModifier(rm.name, desc, s.Markup))
	}
	return s, "", nil
}

// isModifierParagraph reports whether every non-indented line of para is a
// modifier entry; indented lines continue the previous entry.
func isModifierParagraph(para []string) bool {
	if startsIndented(para[0]) || !modifierLine.MatchString(strings.TrimSpace(para[0])) {
		return false
	}
	for _, line := range para[1:] {
		if startsIndented(line) {
			continue
		}
		if !modifierLine.MatchString(strings.TrimSpace(line)) {
			return false
		}
	}
	return true
}

func startsIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func joinTrimmed(lines []string, sep string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, strings.TrimSpace(l))
	}
	return strings.Join(parts, sep)
}

func (p *blockParser) renderBlock(paras []string) (string, error) {
	if len(paras) == 0 {
		return "", nil
	}
	if p.block != nil {
		return p.block.Render([]byte(strings.Join(paras, "\n\n")))
	}
	out := make([]string, 0, len(paras))
	for _, para := range paras {
		out = append(out, "<p>"+html.EscapeString(para)+"</p>")
	}
	return strings.Join(out, "\n"), nil
}

func (p *blockParser) renderInline(text string) (string, error) {
	if p.inline != nil {
		return p.inline.Render([]byte(text))
	}
	return html.EscapeString(text), nil
}
