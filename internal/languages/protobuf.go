package languages

import (
	"regexp"

	"github.com/morozRed/apitrail/internal/detect"
)

func protobufRules() detect.LanguageRules {
	return detect.LanguageRules{
		Language: "protobuf",
		Rules: []detect.Rule{
			{
				Framework: "protobuf",
				Pattern:   regexp.MustCompile(`service\s+(\w+)\s*\{`),
				Strategy:  detect.RPCService,
				Name:      1,
			},
			{
				Framework: "protobuf",
				Pattern:   regexp.MustCompile(`rpc\s+(\w+)\s*\(`),
				Strategy:  detect.RPCMethod,
				Name:      1,
			},
		},
	}
}
