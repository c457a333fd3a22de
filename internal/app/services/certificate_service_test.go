package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
)

func newCertificateFixture() (*CertificateService, *memDocuments, *memSequenceStore) {
	docs := &memDocuments{}
	seq := newMemSequenceStore()
	allocator := NewSequenceAllocator(seq, zerolog.Nop(), AllocatorOptions{ConflictPolicy: config.ConflictPolicyRetry})
	svc := NewCertificateService(certStore{docs}, allocator, "TR", zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC) }
	return svc, docs, seq
}

func TestCreateCertificateAllocatesForCurrentYear(t *testing.T) {
	svc, docs, seq := newCertificateFixture()
	ctx := context.Background()

	first, err := svc.CreateCertificate(ctx, &dto.CreateCertificateRequest{
		RecipientName: "  Asha Rao ",
		Course:        "Full Stack Web",
		CourseCode:    "FSW",
		DOB:           "14-03-2003",
		College:       "RVCE",
	})
	require.NoError(t, err)
	assert.Equal(t, "TR-2025/FSW/00001", first.CertificateID)
	assert.Equal(t, "Asha Rao", first.RecipientName)
	require.NotNil(t, first.DOB)
	require.NotNil(t, first.College)
	assert.Nil(t, first.Department)

	second, err := svc.CreateCertificate(ctx, &dto.CreateCertificateRequest{
		RecipientName: "Ravi", Course: "Full Stack Web", CourseCode: "FSW",
	})
	require.NoError(t, err)
	assert.Equal(t, "TR-2025/FSW/00002", second.CertificateID)

	assert.Len(t, docs.certificates, 2)
	last, _, _ := seq.Get(ctx, 2025, "FSW")
	assert.Equal(t, 2, last)
}

func TestCreateCertificateWithExplicitID(t *testing.T) {
	svc, _, seq := newCertificateFixture()
	ctx := context.Background()

	req := &dto.CreateCertificateRequest{
		CertificateID: "TR-2025/FSW/00040",
		RecipientName: "Meera", Course: "Full Stack Web", CourseCode: "FSW",
	}
	cert, err := svc.CreateCertificate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "TR-2025/FSW/00040", cert.CertificateID)

	// the counter is pushed past the explicit number
	next, err := svc.CreateCertificate(ctx, &dto.CreateCertificateRequest{
		RecipientName: "Nikhil", Course: "Full Stack Web", CourseCode: "FSW",
	})
	require.NoError(t, err)
	assert.Equal(t, "TR-2025/FSW/00041", next.CertificateID)

	_, err = svc.CreateCertificate(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrCertificateIDExists)

	last, _, _ := seq.Get(ctx, 2025, "FSW")
	assert.Equal(t, 41, last)
}

func TestCreateCertificateValidation(t *testing.T) {
	svc, docs, _ := newCertificateFixture()

	_, err := svc.CreateCertificate(context.Background(), &dto.CreateCertificateRequest{
		RecipientName: "Asha", Course: "Web", CourseCode: "FSW", DOB: "yesterday",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateCertificate(context.Background(), &dto.CreateCertificateRequest{
		RecipientName: "Asha", Course: "Web", CourseCode: "F SW",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.Empty(t, docs.certificates)
}

func TestVerifyCertificate(t *testing.T) {
	svc, _, _ := newCertificateFixture()
	ctx := context.Background()

	cert, err := svc.CreateCertificate(ctx, &dto.CreateCertificateRequest{
		RecipientName: "Asha Rao", Course: "Full Stack Web", CourseCode: "FSW",
	})
	require.NoError(t, err)

	resp, err := svc.VerifyCertificate(ctx, " "+cert.CertificateID+" ")
	require.NoError(t, err)
	assert.Equal(t, &dto.VerifyResponse{
		Valid:         true,
		CertificateID: "TR-2025/FSW/00001",
		RecipientName: "Asha Rao",
		Course:        "Full Stack Web",
		IssuedOn:      "July 15, 2025",
	}, resp)

	_, err = svc.VerifyCertificate(ctx, "TR-2025/FSW/09999")
	assert.ErrorIs(t, err, apperrors.ErrCertificateNotFound)

	_, err = svc.VerifyCertificate(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListCertificatesNormalisesPaging(t *testing.T) {
	svc, _, _ := newCertificateFixture()

	resp, err := svc.ListCertificates(context.Background(), repositories.CertificateFilter{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, 0, resp.Offset)
	assert.NotNil(t, resp.Items)
	assert.Zero(t, resp.Total)
}
