package notectx

import (
	"strings"

	"golang.org/x/text/language"
)

// Env describes the user and system the note is written on.
type Env struct {
	Username         string
	Lang             string
	ExtensionDefault string
}

// DetectEnv reads the user name and language from the environment
// through getenv. FMNOTE_USER and FMNOTE_LANG take precedence over the
// system variables. An unparsable or POSIX locale yields an empty lang.
func DetectEnv(getenv func(string) string, extensionDefault string) Env {
	return Env{
		Username:         firstSet(getenv, "FMNOTE_USER", "USER", "USERNAME", "LOGNAME"),
		Lang:             LanguageTag(firstSet(getenv, "FMNOTE_LANG", "LC_ALL", "LANG")),
		ExtensionDefault: extensionDefault,
	}
}

// LanguageTag converts a POSIX locale such as "de_DE.UTF-8" into a
// BCP 47 tag such as "de-DE".
func LanguageTag(locale string) string {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return ""
	}
	return tag.String()
}

func firstSet(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
