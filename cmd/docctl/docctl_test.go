package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/migrations"
	"github.com/tarcin/docissuer/internal/app/models"
)

func init() {
	color.NoColor = true
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "create-user", "stats", "sequences", "render"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRenderRejectsUnknownKind(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"render", "diploma", "TR-2025/FSW/00001"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document kind")
}

func TestRenderRequiresTwoArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"render", "certificate"})

	assert.Error(t, root.Execute())
}

func TestCreateUserRequiresPassword(t *testing.T) {
	t.Setenv("DOCCTL_PASSWORD", "")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"create-user", "--username", "admin"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, &models.Stats{TotalCertificates: 12, TotalLetters: 3, TotalBatches: 2, TotalDownloads: 40})

	out := buf.String()
	assert.Contains(t, out, "Document totals")
	for _, want := range []string{"Certificates", "12", "Letters", "40"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSequences(t *testing.T) {
	var buf bytes.Buffer
	renderSequences(&buf, []models.SequenceCounter{
		{Year: 2025, CourseCode: "FSW", LastSequence: 6},
	}, "TR")

	out := buf.String()
	assert.Contains(t, out, "FSW")
	assert.Contains(t, out, "TR-2025/FSW/00007")
}

func TestRenderMigrations(t *testing.T) {
	applied := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	renderMigrations(&buf, []migrations.Migration{
		{Version: "001", File: "001_init.sql", AppliedAt: &applied},
		{Version: "002", File: "002_indexes.sql"},
	})

	out := buf.String()
	assert.Contains(t, out, "001_init.sql")
	assert.Contains(t, out, "pending")
	assert.Equal(t, 1, strings.Count(out, "pending"))
	assert.Contains(t, out, "2 migration file(s)")
}
