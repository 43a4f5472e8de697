package storage

import (
	"regexp"
	"strings"
)

// GCS URI pattern: gs://bucket[/path]
var gcsURIPattern = regexp.MustCompile(`^gs://([^/]+)/?(.*)$`)

// ParseGCSURI splits a gs:// URI into bucket and object path. The path is
// returned without a trailing slash and may be empty.
func ParseGCSURI(uri string) (bucket, object string, ok bool) {
	matches := gcsURIPattern.FindStringSubmatch(uri)
	if len(matches) != 3 {
		return "", "", false
	}
	return matches[1], strings.TrimSuffix(matches[2], "/"), true
}
