package pdfgen

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models"
)

func strPtr(s string) *string { return &s }

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Options{
		AssetsDir:     t.TempDir(),
		Organization:  "Tarcin Robotic LLP",
		VerifyBaseURL: "https://certs.example.com/verify",
	})
	require.NoError(t, err)
	return g
}

func TestLoadTemplates_BuiltinAndOverride(t *testing.T) {
	builtin, err := LoadTemplates("")
	require.NoError(t, err)
	assert.Contains(t, builtin[models.LetterOffer], "{{courseName}}")
	assert.Contains(t, builtin[models.LetterCompletion], "{{projectTitle}}")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offer.tmpl"), []byte("\nHello {{recipientName}}\n"), 0o600))

	custom, err := LoadTemplates(dir)
	require.NoError(t, err)
	assert.Equal(t, "Hello {{recipientName}}", custom[models.LetterOffer])
	assert.Equal(t, builtin[models.LetterCompletion], custom[models.LetterCompletion])
}

func TestLetterData_Fallbacks(t *testing.T) {
	created := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	data := LetterData(&models.Letter{
		RecipientName: "Asha Rao",
		LetterType:    models.LetterOffer,
		CourseName:    strPtr("Embedded Systems"),
		StartDate:     strPtr("2025-06-01"),
		EndDate:       strPtr("sometime in August"),
		CreatedAt:     created,
	})

	assert.Equal(t, "June 1, 2025", data["startDate"])
	assert.Equal(t, "sometime in August", data["endDate"])
	assert.Equal(t, "Embedded Systems", data["position"])
	assert.Equal(t, "04/03/2025", data["date"])
	assert.Equal(t, "", data["projectTitle"])

	data = LetterData(&models.Letter{RecipientName: "B", LetterDate: strPtr("01/01/2026"), CreatedAt: created})
	assert.Equal(t, "Intern", data["position"])
	assert.Equal(t, "01/01/2026", data["date"])
}

func TestGenerator_LetterWithoutBackground(t *testing.T) {
	g := newTestGenerator(t)

	for _, kind := range []models.LetterKind{models.LetterOffer, models.LetterCompletion} {
		out, err := g.Letter(&models.Letter{
			RecipientName: "Asha Rao",
			LetterType:    kind,
			CourseName:    strPtr("Robotics"),
			ProjectTitle:  strPtr("Line follower"),
			StartDate:     strPtr("2025-06-01"),
			EndDate:       strPtr("2025-08-31"),
			CreatedAt:     time.Now(),
		})
		require.NoError(t, err, kind)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), kind)
	}
}

func TestGenerator_LetterUnknownType(t *testing.T) {
	g := newTestGenerator(t)
	_, err := g.Letter(&models.Letter{RecipientName: "x", LetterType: "reference"})
	assert.Error(t, err)
}

func TestGenerator_Certificate(t *testing.T) {
	g := newTestGenerator(t)

	out, err := g.Certificate(&models.Certificate{
		CertificateID: "TR-2025/FSW/00007",
		RecipientName: "Asha Rao",
		Course:        "Full Stack Web",
		CourseCode:    "FSW",
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestGenerator_CorruptBackgroundIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CertificateBackground), []byte("not a png"), 0o600))

	g, err := NewGenerator(Options{AssetsDir: dir})
	require.NoError(t, err)

	out, err := g.Certificate(&models.Certificate{CertificateID: "TR-2025/AI/00001", RecipientName: "A", Course: "AI"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestCertificateText(t *testing.T) {
	assert.Equal(t, "Successfully completed internship on Robotics",
		CertificateText(&models.Certificate{Course: "Robotics", Content: strPtr("   ")}))
	assert.Equal(t, "Custom text", CertificateText(&models.Certificate{Course: "Robotics", Content: strPtr("Custom text")}))
}

func TestVerifyURL(t *testing.T) {
	g := &Generator{opts: Options{VerifyBaseURL: "https://x.example/verify"}}
	assert.Equal(t, "https://x.example/verify?id=TR-2025%2FFSW%2F00007", g.VerifyURL("TR-2025/FSW/00007"))

	g.opts.VerifyBaseURL = "https://x.example/v?lang=en"
	assert.Equal(t, "https://x.example/v?lang=en&id=A", g.VerifyURL("A"))

	g.opts.VerifyBaseURL = ""
	assert.Empty(t, g.VerifyURL("A"))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "TR-2025_FSW_00007_Asha_K__Rao.pdf", CertificateFileName("TR-2025/FSW/00007", "Asha K. Rao"))
	assert.Equal(t, "offer_Asha_Rao.pdf", LetterFileName("offer", "Asha Rao"))
}

func TestWriteArchive(t *testing.T) {
	var buf bytes.Buffer
	err := WriteArchive(&buf, []ArchiveEntry{
		{Name: "a.pdf", Render: func() ([]byte, error) { return []byte("one"), nil }},
		{Name: "a.pdf", Render: func() ([]byte, error) { return []byte("two"), nil }},
		{Name: "b.pdf", Render: func() ([]byte, error) { return []byte("three"), nil }},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(b)
	}
	assert.Equal(t, map[string]string{"a.pdf": "one", "a-2.pdf": "two", "b.pdf": "three"}, got)
}

func TestWriteArchive_SuffixDoesNotCollide(t *testing.T) {
	var buf bytes.Buffer
	var entries []ArchiveEntry
	for _, name := range []string{"a.pdf", "a.pdf", "a-2.pdf", "a.pdf"} {
		entries = append(entries, ArchiveEntry{Name: name, Render: func() ([]byte, error) { return []byte("x"), nil }})
	}
	require.NoError(t, WriteArchive(&buf, entries))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.pdf", "a-2.pdf", "a-2-2.pdf", "a-3.pdf"}, names)
}

func TestWriteArchive_RenderError(t *testing.T) {
	boom := errors.New("boom")
	err := WriteArchive(io.Discard, []ArchiveEntry{
		{Name: "x.pdf", Render: func() ([]byte, error) { return nil, boom }},
	})
	assert.ErrorIs(t, err, boom)
}
