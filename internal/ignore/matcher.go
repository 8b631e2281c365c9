package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileName is the per-project ignore file read from the code directory root.
const FileName = ".apitrailignore"

type rule struct {
	pattern  *regexp.Regexp
	raw      string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from directory names excluded by configuration
// followed by user rules. Later user negations can re-include a default.
func NewMatcher(dirs []string, userRules []string) *Matcher {
	all := make([]string, 0, len(dirs)+len(userRules))
	for _, dir := range dirs {
		dir = strings.Trim(strings.TrimSpace(dir), "/")
		if dir != "" {
			all = append(all, dir+"/")
		}
	}
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// Load builds a matcher from dirs, extra rules and the FileName file under root.
// A missing ignore file is not an error.
func Load(root string, dirs []string, extra []string) (*Matcher, error) {
	rules := append([]string(nil), extra...)

	path := filepath.Join(root, FileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMatcher(dirs, rules), nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rules = append(rules, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewMatcher(dirs, rules), nil
}

// ShouldIgnore returns true when relPath should be excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile("^" + globToRegex(line) + "$")
	if err != nil {
		return rule{}, false
	}
	parsed.raw = line
	parsed.pattern = re
	parsed.nested = strings.Contains(line, "/")
	return parsed, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	parts := strings.Split(relPath, "/")

	if r.dirOnly {
		// A directory rule covers the directory and everything beneath it.
		limit := len(parts)
		if !isDir {
			limit--
		}
		for i := 0; i < limit; i++ {
			prefix := strings.Join(parts[:i+1], "/")
			if r.pattern.MatchString(prefix) {
				return true
			}
			if !r.anchored && !r.nested && r.pattern.MatchString(parts[i]) {
				return true
			}
		}
		return false
	}

	if r.anchored {
		return r.pattern.MatchString(relPath)
	}

	if r.nested {
		for i := 0; i < len(parts); i++ {
			if r.pattern.MatchString(strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	for _, segment := range parts {
		if r.pattern.MatchString(segment) {
			return true
		}
	}
	return false
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
			continue
		}

		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}

		if strings.ContainsRune(`.+()|[]{}^$\\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
