package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/morozRed/apitrail/internal/enrich"
)

// BuildAnalysisPrompt asks for an entry-to-storage walkthrough of one endpoint.
// source is the owning file's content; truncated marks that it was cut.
func BuildAnalysisPrompt(endpoint enrich.EndpointContext, language, source string, truncated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a code analyst. Document one API endpoint end to end, from its entry point down to the storage layer.

## Endpoint

- Name: %s
- Type: %s
- Identity: %s
- File: %s
`, endpoint.Name, endpoint.Kind, endpoint.ID, endpoint.File)
	if endpoint.Attempt > 1 {
		fmt.Fprintf(&b, "- Attempt: %d (earlier attempts failed)\n", endpoint.Attempt)
	}

	b.WriteString(`
## Write these sections

### 1. Overview
Name and type, HTTP method and path or RPC service method, and what the endpoint does.

### 2. Request parameters
Inputs with their types, validation rules, and whether each is required.

### 3. Processing flow
The call chain from the entry function to the data layer, as a tree:

` + "```" + `
entry function
  ├── parameter validation
  ├── business logic
  │   ├── branch: ...
  │   └── branch: ...
  └── data access
      ├── database reads/writes
      └── cache operations (if any)
` + "```" + `

For each step give the function, its file, the main logic, its branches and how errors are handled.

### 4. Database operations
Tables touched, operation types (SELECT/INSERT/UPDATE/DELETE) and key query conditions.

### 5. Response
Response shape, plus possible error codes and what they mean.

### 6. Purpose
A short summary of the business purpose of the endpoint.

## Rules
- Base every statement on the code. Mark anything you cannot confirm as "unconfirmed".
- Reply with the markdown document only.
`)

	if source == "" {
		b.WriteString("\nThe source file could not be read; work from the endpoint metadata.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "\n## Source: %s\n\n```%s\n%s", endpoint.File, language, source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	if truncated {
		b.WriteString("\nThe file was truncated; the remainder is not shown.\n")
	}
	return b.String()
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}
