package services

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"cleanviz/internal/charts"
)

// BundleFileName is the download name of the plot archive.
const BundleFileName = "plots.zip"

// skippedListName is the archive entry listing plots that were not drawn.
const skippedListName = "SKIPPED.txt"

type skippedPlot struct {
	kind   charts.Kind
	reason string
}

// writeBundle stores each rendered image under its plot file name, in
// charts.Kinds order, followed by the skipped list when non-empty.
func writeBundle(w io.Writer, jobs []*plotJob, images [][]byte, skipped []skippedPlot) error {
	zw := zip.NewWriter(w)
	modified := time.Now()

	for i, job := range jobs {
		if job == nil {
			continue
		}
		if err := writeEntry(zw, job.kind.FileName(), images[i], modified); err != nil {
			return err
		}
	}

	if len(skipped) > 0 {
		var b strings.Builder
		for _, s := range skipped {
			fmt.Fprintf(&b, "%s: %s\n", s.kind.FileName(), s.reason)
		}
		if err := writeEntry(zw, skippedListName, []byte(b.String()), modified); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", BundleFileName, err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
