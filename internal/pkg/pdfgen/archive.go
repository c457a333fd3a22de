package pdfgen

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CertificateFileName is {certificateId with / as _}_{name}.pdf
func CertificateFileName(certificateID, recipientName string) string {
	return strings.ReplaceAll(certificateID, "/", "_") + "_" + unsafeName.ReplaceAllString(recipientName, "_") + ".pdf"
}

// LetterFileName is {letterType}_{name}.pdf
func LetterFileName(letterType, recipientName string) string {
	return letterType + "_" + unsafeName.ReplaceAllString(recipientName, "_") + ".pdf"
}

// ArchiveEntry is one file of a ZIP archive, rendered lazily
type ArchiveEntry struct {
	Name   string
	Render func() ([]byte, error)
}

// WriteArchive renders every entry into a ZIP stream on w. Repeated names get
// the first free -2, -3, ... suffix before the extension.
func WriteArchive(w io.Writer, entries []ArchiveEntry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(entries))
	now := time.Now()

	for _, e := range entries {
		data, err := e.Render()
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("render %s: %w", e.Name, err)
		}

		name := uniqueName(e.Name, seen)
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now})
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("add %s to archive: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s to archive: %w", name, err)
		}
	}

	return zw.Close()
}

func uniqueName(name string, seen map[string]int) string {
	seen[name]++
	if seen[name] == 1 {
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := seen[name]; ; n++ {
		candidate := base + "-" + strconv.Itoa(n) + ext
		if seen[candidate] == 0 {
			seen[name] = n
			seen[candidate] = 1
			return candidate
		}
	}
}
