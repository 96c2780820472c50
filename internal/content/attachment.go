package content

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Preview describes a locally selected cover image before it is uploaded.
type Preview struct {
	Name string
	Size int64
	MIME string
}

func (p Preview) String() string {
	return fmt.Sprintf("%s · %s · %s", p.Name, humanSize(p.Size), p.MIME)
}

// DescribeAttachment inspects a local file for the cover-image preview.
func DescribeAttachment(path string) (Preview, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Preview{}, err
	}
	if st.IsDir() {
		return Preview{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Name: filepath.Base(path), Size: st.Size(), MIME: mt.String()}, nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
