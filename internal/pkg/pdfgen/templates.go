package pdfgen

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// Templates holds the letter body template of every letter kind
type Templates map[models.LetterKind]string

// LoadTemplates returns the built-in bodies, replaced by {kind}.tmpl files
// found in overrideDir when it is set.
func LoadTemplates(overrideDir string) (Templates, error) {
	out := make(Templates, 2)
	for _, kind := range []models.LetterKind{models.LetterOffer, models.LetterCompletion} {
		name := string(kind) + ".tmpl"

		body, err := builtinTemplates.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("read built-in %s template: %w", kind, err)
		}

		if overrideDir != "" {
			custom, err := os.ReadFile(filepath.Join(overrideDir, name))
			switch {
			case err == nil:
				body = custom
				logger.Info().Str("kind", string(kind)).Str("dir", overrideDir).Msg("Using custom letter template")
			case !errors.Is(err, os.ErrNotExist):
				return nil, fmt.Errorf("read %s template override: %w", kind, err)
			}
		}

		out[kind] = strings.TrimSpace(string(body))
	}
	return out, nil
}
