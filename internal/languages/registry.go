package languages

import (
	"path/filepath"
	"strings"

	"github.com/morozRed/apitrail/internal/detect"
)

// Unknown is the tag for files no rule table or extension maps to.
const Unknown = "unknown"

var extToLang = map[string]string{
	".py":    "python",
	".go":    "go",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".rs":    "rust",
	".cpp":   "cpp",
	".c":     "c",
	".h":     "c",
	".proto": "protobuf",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
}

// Classify maps a file path to a language tag by its extension.
func Classify(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLang[ext]; ok {
		return lang
	}
	return Unknown
}

// NewDefaultRegistry creates a registry with every supported language's rule table.
func NewDefaultRegistry() *detect.Registry {
	r := detect.NewRegistry()

	r.Register(goRules())
	r.Register(pythonRules())
	r.Register(javaRules())
	r.Register(javascriptRules())
	r.Register(typescriptRules())
	r.Register(protobufRules())
	r.Register(rustRules())

	return r
}

// quote matches any JS/Go string delimiter.
const quote = "[\"'`]"

// handlerArgs captures a trailing handler argument list, e.g. `, auth, getUser)`.
const handlerArgs = `(?:\s*,\s*((?:[\w.]+\s*,\s*)*[\w.]+)\s*\))?`
