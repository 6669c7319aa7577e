// Package tenant derives storage paths for an organization/department pair.
package tenant

import (
	"strings"
	"time"
)

const (
	rootPrefix      = "organizations"
	uploadsSegment  = "uploads"
	metadataSegment = "metadata"
	metadataSuffix  = ".metadata.json"

	// TimestampLayout is the second-resolution stamp embedded in object names.
	TimestampLayout = "20060102_150405"
)

// Slug keeps ASCII letters, digits, '-' and '_' and lowercases the result.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Namespace returns organizations/{org}/{dept}/uploads. Empty slugs are kept as empty segments.
func Namespace(organization, department string) string {
	return rootPrefix + "/" + Slug(organization) + "/" + Slug(department) + "/" + uploadsSegment
}

// ObjectName builds {slug(base)}_{timestamp}[.ext] from an original file name.
// The extension after the last '.' is kept verbatim.
func ObjectName(filename string, at time.Time) string {
	base, ext := splitExt(filename)
	name := Slug(base) + "_" + at.Format(TimestampLayout)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// ObjectKey joins a namespace and an object name.
func ObjectKey(namespace, objectName string) string {
	return namespace + "/" + objectName
}

// MetadataKey is the sidecar location for an object name inside a namespace.
func MetadataKey(namespace, objectName string) string {
	return namespace + "/" + metadataSegment + "/" + objectName + metadataSuffix
}

// Extension returns the lowercased extension of filename without the dot.
func Extension(filename string) string {
	_, ext := splitExt(filename)
	return strings.ToLower(ext)
}

func splitExt(filename string) (string, string) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return filename, ""
	}
	return filename[:idx], filename[idx+1:]
}
