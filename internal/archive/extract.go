package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath marks an entry that would land outside the destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extractor unpacks one archive into destDir.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// Extractors returns the built-in extractor for every known format.
func Extractors() map[Format]Extractor {
	return map[Format]Extractor{
		FormatZip:    zipExtractor{},
		FormatTar:    tarExtractor{compression: compressionNone},
		FormatTarGz:  tarExtractor{compression: compressionGzip},
		FormatTarBz2: tarExtractor{compression: compressionBzip2},
		FormatTarXz:  tarExtractor{compression: compressionXz},
		Format7z:     sevenZipExtractor{},
		FormatRar:    rarExtractor{},
	}
}

// sink writes archive members below root without ever leaving it or
// overwriting an existing file.
type sink struct {
	root string
}

func newSink(destDir string) (sink, error) {
	root, err := filepath.Abs(destDir)
	if err != nil {
		return sink{}, err
	}
	return sink{root: root}, nil
}

func (s sink) resolve(name string) (string, error) {
	clean := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(s.root, clean)
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func (s sink) dir(name string) error {
	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(target, 0o755)
}

func (s sink) file(ctx context.Context, name string, mode fs.FileMode, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm|0o200)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return out.Close()
}
