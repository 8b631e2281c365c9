package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

const jsFunction = `(?:function\s+(\w+)|(\w+)\s*[=:]\s*(?:async\s+)?(?:function|\([^)]*\)\s*=>))`

func expressRule() detect.Rule {
	return detect.Rule{
		Framework: "express",
		Pattern:   regexp.MustCompile(`\b(?:app|router|server|api|\w+Router)\.(get|post|put|delete|patch|head|options|all)\(\s*` + quote + `([^"'` + "`" + `]+)` + quote + handlerArgs),
		Strategy:  detect.MethodFirst,
		Method:    1,
		Path:      2,
		Handler:   3,
	}
}

func javascriptRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "javascript",
		Rules:    []detect.Rule{expressRule()},
		Function: regexp.MustCompile(jsFunction),
	}
}

func typescriptRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "typescript",
		Rules: []detect.Rule{
			expressRule(),
			{
				Framework: "nestjs",
				Pattern:   regexp.MustCompile(`@(Get|Post|Put|Delete|Patch|Head|Options|All)\(\s*(?:` + quote + `([^"'` + "`" + `]*)` + quote + `)?\s*\)`),
				Strategy:  detect.Annotation,
				Method:    1,
				Path:      2,
			},
		},
		// Class methods need a modifier or a trailing brace to count.
		Function: regexp.MustCompile(jsFunction + `|^\s*(?:(?:public|private|protected|static|async)\s+)*(\w+)\s*\(.*\)\s*(?::[^=]+)?\{\s*$`),
	}
}
