package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nwaples/rardecode/v2"
)

type rarExtractor struct{}

func (rarExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	out, err := newSink(destDir)
	if err != nil {
		return err
	}
	r, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open rar: %w", err)
	}
	defer r.Close()

	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rar: %w", err)
		}
		if hdr.IsDir {
			if err := out.dir(hdr.Name); err != nil {
				return err
			}
			continue
		}
		if err := out.file(ctx, hdr.Name, hdr.Mode(), r); err != nil {
			return err
		}
	}
}
