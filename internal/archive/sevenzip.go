package archive

import (
	"context"
	"fmt"

	"github.com/bodgit/sevenzip"
)

type sevenZipExtractor struct{}

func (sevenZipExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	out, err := newSink(destDir)
	if err != nil {
		return err
	}
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		info := f.FileInfo()
		if info.IsDir() {
			if err := out.dir(f.Name); err != nil {
				return err
			}
			continue
		}
		if err := extract7zFile(ctx, out, f); err != nil {
			return err
		}
	}
	return nil
}

func extract7zFile(ctx context.Context, out sink, f *sevenzip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return out.file(ctx, f.Name, f.FileInfo().Mode(), rc)
}
