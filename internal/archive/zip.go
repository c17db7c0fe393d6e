package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
)

type zipExtractor struct{}

func (zipExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	out, err := newSink(destDir)
	if err != nil {
		return err
	}
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = r.Close()
		return fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := out.dir(f.Name); err != nil {
				return err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		if err := extractZipFile(ctx, out, f); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(ctx context.Context, out sink, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return out.file(ctx, f.Name, f.Mode(), rc)
}
