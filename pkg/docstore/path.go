package docstore

import "strings"

const separator = "/"

// PathArg is one argument to Path. The set of implementations is closed:
// Seg, Segs, DocumentRef and CollectionRef.
type PathArg interface {
	appendSegments(dst []string) []string
}

// Seg is a single path fragment. It may itself contain separators, so
// Seg("villages/v1") and Seg("villages"), Seg("v1") are equivalent.
type Seg string

// Segs is a list of path fragments.
type Segs []string

func (s Seg) appendSegments(dst []string) []string {
	return appendSplit(dst, string(s))
}

func (s Segs) appendSegments(dst []string) []string {
	for _, part := range s {
		dst = appendSplit(dst, part)
	}
	return dst
}

func (r DocumentRef) appendSegments(dst []string) []string {
	return appendSplit(dst, r.path)
}

func (r CollectionRef) appendSegments(dst []string) []string {
	return appendSplit(dst, r.path)
}

func appendSplit(dst []string, s string) []string {
	for _, part := range strings.Split(s, separator) {
		if part != "" {
			dst = append(dst, part)
		}
	}
	return dst
}

// Path flattens args left to right into one canonical path: empty segments are
// dropped and segments are joined by a single "/". Any grouping of the same
// segment sequence yields the same path.
func Path(args ...PathArg) string {
	var segments []string
	for _, arg := range args {
		if arg == nil {
			continue
		}
		segments = arg.appendSegments(segments)
	}
	return strings.Join(segments, separator)
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, separator); i >= 0 {
		return path[:i]
	}
	return ""
}
