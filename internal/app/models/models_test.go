package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCertificateID(t *testing.T) {
	assert.Equal(t, "TR-2025/FSW/00007", FormatCertificateID("TR", 2025, "FSW", 7))
	assert.Equal(t, "TR-2024/AI/00001", FormatCertificateID("", 2024, "AI", 1))
	assert.Equal(t, "TR-2025/FSW/123456", FormatCertificateID("TR", 2025, "FSW", 123456))
}

func TestParseCertificateID(t *testing.T) {
	parts, err := ParseCertificateID("TR-2025/FSW/00007")
	require.NoError(t, err)
	assert.Equal(t, CertificateIDParts{Prefix: "TR", Year: 2025, CourseCode: "FSW", Sequence: 7}, parts)

	for _, bad := range []string{"", "TR-25/FSW/00007", "TR-2025/FSW/7", "TR-2025//00007", "TR2025/FSW/00007"} {
		_, err := ParseCertificateID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLetterKind(t *testing.T) {
	k, ok := ParseLetterKind(" Offer ")
	assert.True(t, ok)
	assert.Equal(t, LetterOffer, k)
	assert.Equal(t, BatchLetterOffer, k.BatchKind())

	k, ok = ParseLetterKind("COMPLETION")
	assert.True(t, ok)
	assert.Equal(t, BatchLetterCompletion, k.BatchKind())
	assert.True(t, k.BatchKind().IsLetter())

	_, ok = ParseLetterKind("reference")
	assert.False(t, ok)
}
