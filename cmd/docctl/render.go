package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/bootstrap"
	"github.com/tarcin/docissuer/internal/pkg/pdfgen"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render <certificate|letter> <id>",
		Short: "Render a stored certificate or letter to a PDF file",
		Long: `Render a stored document without going through the HTTP API.

Certificates are looked up by certificate ID (e.g. TR-2025/FSW/00007) or row UUID.
Letters are looked up by row UUID. Downloads rendered here are not counted in stats.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"certificate", "letter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ref := strings.ToLower(args[0]), args[1]
			if kind != "certificate" && kind != "letter" {
				return fmt.Errorf("unknown document kind %q, want certificate or letter", args[0])
			}

			ctx := cmd.Context()
			e, err := connect(ctx, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			gen, err := bootstrap.NewGenerator(e.cfg)
			if err != nil {
				return err
			}

			var data []byte
			var name string
			if kind == "certificate" {
				data, name, err = renderCertificate(ctx, e, gen, ref)
			} else {
				data, name, err = renderLetter(ctx, e, gen, ref)
			}
			if err != nil {
				return err
			}

			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "wrote %s (%d bytes)", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the download file name)")
	return cmd
}

func renderCertificate(ctx context.Context, e *env, gen *pdfgen.Generator, ref string) ([]byte, string, error) {
	var cert *models.Certificate
	var err error
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		cert, err = e.repos.CertificateRepository.GetByID(ctx, id)
	} else {
		cert, err = e.repos.CertificateRepository.GetByCertificateID(ctx, ref)
	}
	if err != nil {
		return nil, "", fmt.Errorf("certificate %s: %w", ref, err)
	}

	data, err := gen.Certificate(cert)
	if err != nil {
		return nil, "", err
	}
	return data, pdfgen.CertificateFileName(cert.CertificateID, cert.RecipientName), nil
}

func renderLetter(ctx context.Context, e *env, gen *pdfgen.Generator, ref string) ([]byte, string, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, "", fmt.Errorf("letter id must be a UUID: %w", err)
	}
	letter, err := e.repos.LetterRepository.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("letter %s: %w", ref, err)
	}

	data, err := gen.Letter(letter)
	if err != nil {
		return nil, "", err
	}
	return data, pdfgen.LetterFileName(string(letter.LetterType), letter.RecipientName), nil
}
