package utils

import "strings"

var languageMap = map[string]string{
	"js":          "JavaScript",
	"jscript":     "JavaScript",
	"javscript":   "JavaScript",
	"javascipt":   "JavaScript",
	"javasript":   "JavaScript",
	"javascript":  "JavaScript",
	"java script": "JavaScript",
	"node":        "JavaScript",
	"nodejs":      "JavaScript",

	"ts":         "TypeScript",
	"typescript": "TypeScript",

	"python":  "Python",
	"py":      "Python",
	"pyt":     "Python",
	"pythn":   "Python",
	"phyton":  "Python",
	"python3": "Python",

	"go":     "Go",
	"golang": "Go",

	"java": "Java",

	"cpp": "C++",
	"c++": "C++",
	"cxx": "C++",
	"cc":  "C++",

	"c": "C",

	"c#":     "C#",
	"csharp": "C#",
	"cs":     "C#",

	"rust": "Rust",
	"rs":   "Rust",

	"kotlin": "Kotlin",
	"kt":     "Kotlin",

	"ruby": "Ruby",
	"rb":   "Ruby",

	"php": "PHP",
}

// NormalizeLanguage maps common spellings to a canonical display name.
// Unknown languages are returned trimmed but otherwise untouched.
func NormalizeLanguage(lang string) string {
	trimmed := strings.TrimSpace(lang)
	if normalized, ok := languageMap[strings.ToLower(trimmed)]; ok {
		return normalized
	}
	return trimmed
}
