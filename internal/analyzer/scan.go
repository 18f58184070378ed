package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ScorpionBytes/vscode-bitbake/internal/embedded"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Region is an embedded-language span, in character offsets of the host text.
type Region struct {
	Kind  embedded.Kind
	Start int
	End   int
}

type span struct {
	start int
	end   int
}

type expansion struct {
	name string
	span span
}

// Scan is one committed pass over a recipe document.
type Scan struct {
	text       string
	runes      []rune
	regions    []Region
	symbols    []Symbol
	directives []Directive
	strings    []span
	expansions []expansion
}

var (
	pythonFuncRe = regexp.MustCompile(`^\s*(?:fakeroot\s+)?python(?:\s+([A-Za-z0-9_.:${}+-]*))?\s*\(\s*\)\s*\{\s*$`)
	shellFuncRe  = regexp.MustCompile(`^\s*(?:fakeroot\s+)?([A-Za-z0-9_.:${}+-]+)\s*\(\s*\)\s*\{\s*$`)
	defFuncRe    = regexp.MustCompile(`^def\s+([A-Za-z0-9_]+)\s*\(`)
	assignRe     = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z0-9_.${}~+-]+(?::[A-Za-z0-9_.${}~+-]+)*)(?:\[[^\]]*\])?\s*(\?\?=|\?=|:=|\+=|=\+|\.=|=\.|=)`)
	directiveRe  = regexp.MustCompile(`^\s*(inherit|require|include)\s+(\S.*?)\s*$`)
	varExpRe     = regexp.MustCompile(`\$\{([A-Za-z0-9_:.~-]+)\}`)
)

type line struct {
	text  string
	start int
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	var current strings.Builder
	offset := 0
	for _, r := range text {
		if r == '\n' {
			lines = append(lines, line{text: current.String(), start: start})
			current.Reset()
			start = offset + 1
		} else {
			current.WriteRune(r)
		}
		offset++
	}
	lines = append(lines, line{text: current.String(), start: start})
	return lines
}

func newScan(text string) *Scan {
	s := &Scan{text: text, runes: []rune(text)}
	s.run()
	return s
}

func (s *Scan) run() {
	lines := splitLines(s.text)
	for i := 0; i < len(lines); i++ {
		ln := lines[i]

		if m := pythonFuncRe.FindStringSubmatchIndex(ln.text); m != nil {
			if m[2] >= 0 && m[2] < m[3] {
				s.addSymbol(ln.text[m[2]:m[3]], SymbolFunction, ln, m[2], m[3])
			}
			i = s.braceBlock(lines, i, embedded.KindPython)
			continue
		}
		if m := defFuncRe.FindStringSubmatchIndex(ln.text); m != nil {
			s.addSymbol(ln.text[m[2]:m[3]], SymbolFunction, ln, m[2], m[3])
			i = s.defBlock(lines, i)
			continue
		}
		if m := shellFuncRe.FindStringSubmatchIndex(ln.text); m != nil {
			s.addSymbol(ln.text[m[2]:m[3]], SymbolFunction, ln, m[2], m[3])
			i = s.braceBlock(lines, i, embedded.KindShell)
			continue
		}
		if m := directiveRe.FindStringSubmatchIndex(ln.text); m != nil {
			kind := DirectiveInherit
			switch ln.text[m[2]:m[3]] {
			case "require":
				kind = DirectiveRequire
			case "include":
				kind = DirectiveInclude
			}
			s.directives = append(s.directives, Directive{
				Kind:     kind,
				Argument: ln.text[m[4]:m[5]],
				ArgRange: s.rangeBetween(ln.start+runeLen(ln.text[:m[4]]), ln.start+runeLen(ln.text[:m[5]])),
			})
		} else if m := assignRe.FindStringSubmatchIndex(ln.text); m != nil {
			s.addSymbol(ln.text[m[2]:m[3]], SymbolVariable, ln, m[2], m[3])
			if first := strings.IndexByte(ln.text, '"'); first >= 0 {
				if last := strings.LastIndexByte(ln.text, '"'); last > first {
					s.strings = append(s.strings, span{
						start: ln.start + runeLen(ln.text[:first]),
						end:   ln.start + runeLen(ln.text[:last]),
					})
				}
			}
		}

		s.inline(ln)
	}

	sort.Slice(s.regions, func(i, j int) bool { return s.regions[i].Start < s.regions[j].Start })
}

// braceBlock records the body of a python/shell function block. The body
// runs from the line after the header to the closing brace in column zero.
func (s *Scan) braceBlock(lines []line, header int, kind embedded.Kind) int {
	start := len(s.runes)
	if header+1 < len(lines) {
		start = lines[header+1].start
	}
	end := len(s.runes)
	j := header + 1
	for ; j < len(lines); j++ {
		if strings.TrimRight(lines[j].text, " \t") == "}" {
			end = lines[j].start
			break
		}
	}
	s.regions = append(s.regions, Region{Kind: kind, Start: start, End: end})
	return j
}

// defBlock records a pure-python def block, header line included. The block
// extends over following lines that are blank or indented.
func (s *Scan) defBlock(lines []line, header int) int {
	j := header + 1
	for ; j < len(lines); j++ {
		t := lines[j].text
		if t == "" || strings.HasPrefix(t, " ") || strings.HasPrefix(t, "\t") {
			continue
		}
		break
	}
	end := len(s.runes)
	if j < len(lines) {
		end = lines[j].start
	}
	s.regions = append(s.regions, Region{Kind: embedded.KindPython, Start: lines[header].start, End: end})
	return j - 1
}

// inline records ${@...} python expressions and plain ${VAR} expansions.
func (s *Scan) inline(ln line) {
	text := ln.text
	idx := 0
	for {
		k := strings.Index(text[idx:], "${@")
		if k < 0 {
			break
		}
		open := idx + k
		depth := 1
		j := open + 3
		for ; j < len(text); j++ {
			switch text[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		s.regions = append(s.regions, Region{
			Kind:  embedded.KindPython,
			Start: ln.start + runeLen(text[:open+3]),
			End:   ln.start + runeLen(text[:min(j, len(text))]),
		})
		if j >= len(text) {
			break
		}
		idx = j
	}

	for _, m := range varExpRe.FindAllStringSubmatchIndex(text, -1) {
		s.expansions = append(s.expansions, expansion{
			name: text[m[2]:m[3]],
			span: span{
				start: ln.start + runeLen(text[:m[2]]),
				end:   ln.start + runeLen(text[:m[3]]),
			},
		})
	}
}

// extract materializes the virtual content and correspondence table for one
// kind. Regions are concatenated with newline separators; separator and
// preamble characters map to NoMapping.
func (s *Scan) extract(kind embedded.Kind) (string, []int, bool) {
	var regions []Region
	for _, r := range s.regions {
		if r.Kind == kind {
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return "", nil, false
	}

	var b strings.Builder
	var indexes []int
	if kind == embedded.KindPython {
		b.WriteString(embedded.PythonPreamble)
		for range embedded.PythonPreamble {
			indexes = append(indexes, embedded.NoMapping)
		}
	}
	for _, r := range regions {
		for off := r.Start; off < r.End && off < len(s.runes); off++ {
			b.WriteRune(s.runes[off])
			indexes = append(indexes, off)
		}
		b.WriteByte('\n')
		indexes = append(indexes, embedded.NoMapping)
	}
	return b.String(), indexes, true
}

func (s *Scan) wordAt(pos protocol.Position) (string, protocol.Range, bool) {
	off := embedded.OffsetAt(s.text, pos)
	if off > len(s.runes) {
		return "", protocol.Range{}, false
	}
	start := off
	for start > 0 && isWordRune(s.runes[start-1]) {
		start--
	}
	end := off
	for end < len(s.runes) && isWordRune(s.runes[end]) {
		end++
	}
	if start == end {
		return "", protocol.Range{}, false
	}
	return string(s.runes[start:end]), s.rangeBetween(start, end), true
}

func (s *Scan) addSymbol(name string, kind SymbolKind, ln line, byteStart, byteEnd int) {
	s.symbols = append(s.symbols, Symbol{
		Name:  name,
		Kind:  kind,
		Range: s.rangeBetween(ln.start+runeLen(ln.text[:byteStart]), ln.start+runeLen(ln.text[:byteEnd])),
	})
}

func (s *Scan) rangeBetween(start, end int) protocol.Range {
	return protocol.Range{
		Start: embedded.PositionAt(s.text, start),
		End:   embedded.PositionAt(s.text, end),
	}
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
