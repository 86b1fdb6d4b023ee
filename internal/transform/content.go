package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	compressRatio   = 0.7
	decompressRatio = 1.3

	archiveSuffix      = ".gz"
	decompressedPrefix = "decompressed_"
)

// SortLines sorts the newline-separated lines of content lexically.
func SortLines(content string) string {
	lines := strings.Split(content, "\n")
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// SearchLines returns every line of content whose lowercase form contains the
// lowercase term, formatted as "Line N: <line>" with 1-based N.
func SearchLines(content, term string) []string {
	if content == "" {
		return []string{}
	}

	needle := strings.ToLower(term)
	results := []string{}
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			results = append(results, fmt.Sprintf("Line %d: %s", i+1, line))
		}
	}
	return results
}

// CompressedSize returns ceil(size * 0.7).
func CompressedSize(size int64) int64 {
	return int64(math.Ceil(float64(size) * compressRatio))
}

// DecompressedSize returns ceil(size * 1.3). It does not invert CompressedSize.
func DecompressedSize(size int64) int64 {
	return int64(math.Ceil(float64(size) * decompressRatio))
}

// ArchiveName returns the name given to a compressed copy.
func ArchiveName(name string) string {
	return name + archiveSuffix
}

// ExtractedName returns the name given to a decompressed copy: the archive
// name minus ".gz", or "decompressed_" + name when there is no such suffix.
func ExtractedName(name string) string {
	if strings.HasSuffix(name, archiveSuffix) {
		return strings.TrimSuffix(name, archiveSuffix)
	}
	return decompressedPrefix + name
}

// CompressedPlaceholder is the marker content stored on an archive.
func CompressedPlaceholder(name string) string {
	return fmt.Sprintf("[Compressed content of %s]", name)
}

// DecompressedPlaceholder is the marker content stored on an extracted copy.
func DecompressedPlaceholder(name string) string {
	return fmt.Sprintf("[Decompressed content of %s]", name)
}
