package httpclient

import (
	"io"
	"strings"
)

// jsonReader wraps a literal JSON document for fake responses.
func jsonReader(s string) io.Reader {
	return strings.NewReader(s)
}
