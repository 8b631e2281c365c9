package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

func rustRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "rust",
		Rules: []detect.Rule{
			{
				Framework: "actix",
				Pattern:   regexp.MustCompile(`#\[(get|post|put|delete|patch|head)\(\s*"([^"]+)"`),
				Strategy:  detect.MethodFirst,
				Method:    1,
				Path:      2,
			},
			{
				Framework: "axum",
				Pattern:   regexp.MustCompile(`\.route\(\s*"([^"]+)"\s*,\s*(get|post|put|delete|patch)\(\s*([\w:]+)`),
				Strategy:  detect.MethodFirst,
				Method:    2,
				Path:      1,
				Handler:   3,
			},
		},
		Function: regexp.MustCompile(`fn\s+(\w+)`),
	}
}
