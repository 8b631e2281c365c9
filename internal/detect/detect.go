package detect

import (
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/morozRed/apitrail/internal/source"
)

// DefaultWindow is how many lines past the match line are searched for a function header.
const DefaultWindow = 5

var (
	methodTokenRe = regexp.MustCompile(`[A-Za-z]+`)

	// Function patterns are loose enough to catch control-flow keywords.
	reservedWords = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true,
		"return": true, "function": true, "new": true, "else": true,
	}
)

// Detector applies a registry of rule tables to source files.
type Detector struct {
	Registry *Registry
	Window   int
}

func NewDetector(registry *Registry, window int) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Detector{Registry: registry, Window: window}
}

type match struct {
	rule  int
	start int
	sub   []int
}

// Detect yields the file's candidates in source order. Files without rules,
// binary files and empty files yield nothing.
func (d *Detector) Detect(file *source.File) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if d == nil || d.Registry == nil || file == nil || file.Binary || file.Content == "" {
			return
		}
		table, ok := d.Registry.Rules(file.Language)
		if !ok || len(table.Rules) == 0 {
			return
		}

		content := file.Content
		var matches []match
		for i, rule := range table.Rules {
			if rule.Pattern == nil {
				continue
			}
			for _, sub := range rule.Pattern.FindAllStringSubmatchIndex(content, -1) {
				matches = append(matches, match{rule: i, start: sub[0], sub: sub})
			}
		}
		if len(matches) == 0 {
			return
		}
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].start != matches[j].start {
				return matches[i].start < matches[j].start
			}
			return matches[i].rule < matches[j].rule
		})

		lines := strings.Split(content, "\n")
		newlines := newlineOffsets(content)

		// The open service carries across the whole file, not just its block.
		var service *string
		for _, m := range matches {
			rule := table.Rules[m.rule]
			line := lineAt(newlines, m.start)

			switch rule.Strategy {
			case RPCService:
				if name := group(content, m.sub, rule.Name); name != "" {
					service = &name
				}
				continue
			case RPCMethod:
				name := group(content, m.sub, rule.Name)
				if name == "" {
					continue
				}
				candidate := Candidate{
					Name:      name,
					Kind:      KindRPC,
					Service:   service,
					File:      file.RelPath,
					Line:      line,
					Framework: rule.Framework,
				}
				candidate.Function = d.owningFunction(table, rule, content, m.sub, lines, line)
				if !yield(candidate) {
					return
				}
			default:
				method, path := extractRoute(rule, content, m.sub)
				candidate := Candidate{
					Kind:      KindHTTP,
					Method:    method,
					Path:      path,
					File:      file.RelPath,
					Line:      line,
					Framework: rule.Framework,
				}
				candidate.Function = d.owningFunction(table, rule, content, m.sub, lines, line)
				if candidate.Function != nil {
					candidate.Name = *candidate.Function
				} else {
					candidate.Name = method + "_" + path
				}
				if !yield(candidate) {
					return
				}
			}
		}
	}
}

// Collect drains Detect into a slice.
func (d *Detector) Collect(file *source.File) []Candidate {
	var out []Candidate
	for candidate := range d.Detect(file) {
		out = append(out, candidate)
	}
	return out
}

func extractRoute(rule Rule, content string, sub []int) (string, string) {
	path := group(content, sub, rule.Path)
	if path == "" {
		path = "/"
	}

	method := ""
	switch rule.Strategy {
	case MethodFirst:
		method = strings.ToUpper(group(content, sub, rule.Method))
	case PathFirst:
		if list := group(content, sub, rule.Methods); list != "" {
			method = strings.ToUpper(methodTokenRe.FindString(list))
		}
	case Annotation:
		name := strings.TrimSuffix(group(content, sub, rule.Method), "Mapping")
		method = strings.ToUpper(name)
	}
	if method == "" {
		method = "GET"
	}
	return method, path
}

// owningFunction prefers an explicit handler capture, then scans forward
// from the match line through the window for a function header.
func (d *Detector) owningFunction(table LanguageRules, rule Rule, content string, sub []int, lines []string, line int) *string {
	if handler := lastSegment(group(content, sub, rule.Handler)); handler != "" && !reservedWords[handler] {
		return &handler
	}
	if table.Function == nil {
		return nil
	}

	end := line + d.Window
	if end > len(lines) {
		end = len(lines)
	}
	for i := line - 1; i < end; i++ {
		if i < 0 {
			continue
		}
		found := table.Function.FindStringSubmatch(lines[i])
		if found == nil {
			continue
		}
		for _, name := range found[1:] {
			if name != "" && !reservedWords[name] {
				return &name
			}
		}
	}
	return nil
}

// lastSegment reduces "auth, handlers.GetUser" or "api::get_user" to the final identifier.
func lastSegment(handler string) string {
	handler = strings.TrimSpace(handler)
	if handler == "" {
		return ""
	}
	if idx := strings.LastIndex(handler, ","); idx >= 0 {
		handler = strings.TrimSpace(handler[idx+1:])
	}
	if idx := strings.LastIndexAny(handler, ".:"); idx >= 0 {
		handler = handler[idx+1:]
	}
	return handler
}

func group(content string, sub []int, index int) string {
	if index <= 0 || 2*index+1 >= len(sub) {
		return ""
	}
	start, end := sub[2*index], sub[2*index+1]
	if start < 0 || end < 0 {
		return ""
	}
	return content[start:end]
}

func newlineOffsets(content string) []int {
	var offsets []int
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

// lineAt counts newlines strictly before offset, plus one.
func lineAt(newlines []int, offset int) int {
	return sort.SearchInts(newlines, offset) + 1
}
