package executor

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// placeholder matches ${name} and ${env:NAME}. A bare $ is left alone so
// text such as passwords survives untouched.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*|env:[A-Za-z_][A-Za-z0-9_]*)\}`)

// expander substitutes run variables into action text.
type expander struct {
	vars   map[string]string
	lookup func(string) (string, bool)
}

func newExpander(baseURL string, start time.Time, lookup func(string) (string, bool)) expander {
	return expander{
		vars: map[string]string{
			"unique":  strconv.FormatInt(start.UnixMilli(), 10),
			"baseUrl": baseURL,
		},
		lookup: lookup,
	}
}

// expand replaces known placeholders; unknown ones are kept verbatim.
func (x expander) expand(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		key := m[2 : len(m)-1]
		if name, ok := strings.CutPrefix(key, "env:"); ok {
			if x.lookup != nil {
				if v, found := x.lookup(name); found {
					return v
				}
			}
			return m
		}
		if v, ok := x.vars[key]; ok {
			return v
		}
		return m
	})
}

// resolveURL joins a relative path onto base. Absolute URLs pass through.
func resolveURL(base, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if u.IsAbs() || base == "" {
		return target, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	path := "/" + strings.TrimLeft(u.Path, "/")
	b.Path = strings.TrimRight(b.Path, "/") + path
	b.RawQuery = u.RawQuery
	b.Fragment = u.Fragment
	return b.String(), nil
}
