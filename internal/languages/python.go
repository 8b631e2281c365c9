package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

func pythonRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "python",
		Rules: []detect.Rule{
			{
				// Covers app.route as well as blueprint routes.
				Framework: "flask",
				Pattern:   regexp.MustCompile(`@(\w+)\.route\(\s*['"]([^'"]+)['"](?:.*methods\s*=\s*[\[(]([^\])]+)[\])])?`),
				Strategy:  detect.PathFirst,
				Path:      2,
				Methods:   3,
			},
			{
				Framework: "fastapi",
				Pattern:   regexp.MustCompile(`@\w+\.(get|post|put|delete|patch|head|options)\(\s*['"]([^'"]+)['"]`),
				Strategy:  detect.MethodFirst,
				Method:    1,
				Path:      2,
			},
			{
				Framework: "django",
				Pattern:   regexp.MustCompile(`\b(?:re_)?path\(\s*r?['"]([^'"]+)['"](?:\s*,\s*([\w.]+)\s*[,)])?`),
				Strategy:  detect.PathFirst,
				Path:      1,
				Handler:   2,
			},
			{
				// Generated base classes.
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`class\s+(\w+)Servicer\s*\(`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				// Implementations subclassing the generated servicer.
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`class\s+\w+\s*\(\s*(?:\w+\.)*(\w+)Servicer\s*\)`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`def\s+(\w+)\s*\(self,\s*request`),
				Strategy:  detect.RPCMethod,
				Name:      1,
			},
		},
		Function: regexp.MustCompile(`def\s+(\w+)\s*\(`),
	}
}
