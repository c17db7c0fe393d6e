package archive

import (
	"strings"
)

// Format identifies an archive container.
type Format string

const (
	FormatUnknown Format = ""
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGz   Format = "tar.gz"
	FormatTarBz2  Format = "tar.bz2"
	FormatTarXz   Format = "tar.xz"
	Format7z      Format = "7z"
	FormatRar     Format = "rar"
)

// suffixes is checked in order so compound extensions win over .tar.
var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.bz2", FormatTarBz2},
	{".tar.xz", FormatTarXz},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".7z", Format7z},
	{".rar", FormatRar},
}

// Detect maps a filename to its archive format, case-insensitively.
func Detect(name string) Format {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) && len(lower) > len(s.suffix) {
			return s.format
		}
	}
	return FormatUnknown
}

// Entry is a top-level archive awaiting extraction.
type Entry struct {
	Path   string
	Format Format
}
