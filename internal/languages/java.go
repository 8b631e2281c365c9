package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

func javaRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "java",
		Rules: []detect.Rule{
			{
				Framework: "spring",
				Pattern:   regexp.MustCompile(`@(Get|Post|Put|Delete|Patch)Mapping\b(?:\(\s*(?:(?:value|path)\s*=\s*)?\{?\s*"([^"]*)")?`),
				Strategy:  detect.Annotation,
				Method:    1,
				Path:      2,
			},
			{
				Framework: "spring",
				Pattern:   regexp.MustCompile(`@RequestMapping\(\s*(?:(?:value|path)\s*=\s*)?"([^"]+)"(?:.*method\s*=\s*RequestMethod\.(\w+))?`),
				Strategy:  detect.PathFirst,
				Path:      1,
				Methods:   2,
			},
			{
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`class\s+\w+\s+extends\s+(\w+)Grpc\.\w+ImplBase`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				Framework: "grpc",
				Pattern:   regexp.MustCompile(`public\s+\w+\s+(\w+)\s*\([^)]*\w+Request`),
				Strategy:  detect.RPCMethod,
				Name:      1,
			},
		},
		Function: regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|synchronized|abstract|default)\s+)*[\w.]+(?:<[^()]*>)?(?:\[\])*\s+(\w+)\s*\(`),
	}
}
