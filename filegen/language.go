package filegen

import (
	"github.com/gleyba/uber-poet/errors"
)

// Language is the closed set of languages modules can be generated in
type Language int

const (
	Swift Language = iota + 1
	ObjC
	Java
)

// Languages lists every supported language in a stable order
var Languages = []Language{Swift, ObjC, Java}

var languageNames = map[Language]string{
	Swift: "Swift",
	ObjC:  "Objective-C",
	Java:  "Java",
}

// ParseLanguage maps a language name ("Swift", "Objective-C", "Java") to a Language
func ParseLanguage(s string) (Language, error) {
	for l, name := range languageNames {
		if name == s {
			return l, nil
		}
	}
	return 0, errors.NewConfigError("unknown language %q", s)
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "Unknown"
}

// Extension returns the source file extension, including the dot
func (l Language) Extension() string {
	switch l {
	case Swift:
		return ".swift"
	case ObjC:
		return ".m"
	case Java:
		return ".java"
	default:
		return ""
	}
}

// MarshalText encodes the language by name in JSON, TOML and YAML
func (l Language) MarshalText() ([]byte, error) {
	if _, ok := languageNames[l]; !ok {
		return nil, errors.Newf("cannot marshal unknown language %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a language name
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
