package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

func goRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "go",
		Rules: []detect.Rule{
			{
				// Embedding the generated base struct names the service.
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`\bUnimplemented(\w+)Server\b`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`Register(\w+)Server\s*\(`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`func\s*\([^)]+\)\s*(\w+)\s*\([^)]*pb\.\w+`),
				Strategy:  detect.RPCMethod,
				Name:      1,
			},
			{
				// gin and echo share upper-case verb helpers.
				Framework: "gin",
				Pattern:   regexp.MustCompile(`(\w+)\.(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\s*\(\s*` + quote + `(/[^"'` + "`" + `]*)` + quote + handlerArgs),
				Strategy:  detect.MethodFirst,
				Method:    2,
				Path:      3,
				Handler:   4,
			},
			{
				// chi and fiber use title-case verbs.
				Framework: "chi",
				Pattern:   regexp.MustCompile(`(\w+)\.(Get|Post|Put|Delete|Patch|Head|Options)\s*\(\s*` + quote + `(/[^"'` + "`" + `]*)` + quote + handlerArgs),
				Strategy:  detect.MethodFirst,
				Method:    2,
				Path:      3,
				Handler:   4,
			},
			{
				// net/http, including "METHOD /path" mux patterns.
				Framework: "net_http",
				Pattern:   regexp.MustCompile(`(\w+)\.HandleFunc\s*\(\s*"(?:([A-Z]+)\s+)?(/[^"]*)"` + handlerArgs),
				Strategy:  detect.PathFirst,
				Methods:   2,
				Path:      3,
				Handler:   4,
			},
		},
		Function: regexp.MustCompile(`func\s+(?:\([^)]+\)\s+)?(\w+)\s*\(`),
	}
}
