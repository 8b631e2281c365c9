package detect

import (
	"regexp"
	"sort"
)

// Kind is the endpoint family a candidate belongs to.
type Kind string

const (
	KindHTTP Kind = "http"
	KindRPC  Kind = "rpc"
)

// Strategy names how a rule's capture groups map onto candidate fields.
type Strategy int

const (
	// MethodFirst rules capture the verb and the path directly.
	MethodFirst Strategy = iota
	// PathFirst rules capture a path and optionally a method list; GET otherwise.
	PathFirst
	// Annotation rules derive the verb from the annotation name.
	Annotation
	// RPCService rules open a service for the remainder of the file.
	RPCService
	// RPCMethod rules emit an rpc candidate under the open service.
	RPCMethod
)

func (s Strategy) String() string {
	switch s {
	case MethodFirst:
		return "method-first"
	case PathFirst:
		return "path-first"
	case Annotation:
		return "annotation"
	case RPCService:
		return "rpc-service"
	case RPCMethod:
		return "rpc-method"
	default:
		return "unknown"
	}
}

// Rule is one declarative detection pattern. Group fields are 1-based
// submatch indices; zero means the rule has no such capture.
type Rule struct {
	Framework string
	Pattern   *regexp.Regexp
	Strategy  Strategy

	Method  int
	Path    int
	Methods int
	Name    int
	Handler int
}

// LanguageRules is the ordered rule table for one language plus the
// function-signature pattern used to resolve owning functions.
type LanguageRules struct {
	Language string
	Rules    []Rule
	Function *regexp.Regexp
}

// Candidate is one raw detector hit.
type Candidate struct {
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Method    string  `json:"method,omitempty"`
	Path      string  `json:"path,omitempty"`
	Service   *string `json:"service,omitempty"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Function  *string `json:"function,omitempty"`
	Framework string  `json:"framework,omitempty"`
}

// ServiceName returns the open service or "" when unresolved.
func (c Candidate) ServiceName() string {
	if c.Service == nil {
		return ""
	}
	return *c.Service
}

// FunctionName returns the owning function or "" when unresolved.
func (c Candidate) FunctionName() string {
	if c.Function == nil {
		return ""
	}
	return *c.Function
}

// Registry holds rule tables keyed by language tag.
type Registry struct {
	languages map[string]LanguageRules
}

func NewRegistry() *Registry {
	return &Registry{languages: make(map[string]LanguageRules)}
}

// Register adds or replaces the rule table for a language.
func (r *Registry) Register(rules LanguageRules) {
	r.languages[rules.Language] = rules
}

func (r *Registry) Rules(language string) (LanguageRules, bool) {
	rules, ok := r.languages[language]
	return rules, ok
}

// Languages returns registered language tags in sorted order.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.languages))
	for lang := range r.languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
