package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionBzip2
	compressionXz
)

type tarExtractor struct {
	compression compression
}

func (t tarExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	out, err := newSink(destDir)
	if err != nil {
		return err
	}
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open tar: %w", err)
	}
	defer file.Close()

	stream, err := t.decompress(file)
	if err != nil {
		return err
	}
	defer stream.Close()
	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := out.dir(hdr.Name); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := out.file(ctx, hdr.Name, hdr.FileInfo().Mode(), tr); err != nil {
				return err
			}
		}
	}
}

// decompress wraps r in the codec for t. Closing the result releases the
// codec only; the caller still owns r.
func (t tarExtractor) decompress(r io.Reader) (io.ReadCloser, error) {
	switch t.compression {
	case compressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		return gz, nil
	case compressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case compressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xz: %w", err)
		}
		return io.NopCloser(xr), nil
	default:
		return io.NopCloser(r), nil
	}
}
