package rest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode maps a value returned by Do onto out, using json field tags.
// Numbers sent as strings (and the reverse) are converted.
func Decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Path formats a request path, escaping every argument as a path segment.
func Path(format string, args ...string) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}

// WithQuery appends q to path. Empty values are skipped.
func WithQuery(path string, q url.Values) string {
	clean := url.Values{}
	for key, values := range q {
		for _, v := range values {
			if v != "" {
				clean.Add(key, v)
			}
		}
	}
	if len(clean) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + clean.Encode()
}
