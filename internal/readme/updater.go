// Package readme maintains the machine-managed contributor block of a
// text document, delimited by two literal marker lines.
package readme

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/naka-gawa/contributor-stats/internal/domain"
)

// Section holds the fixed text surrounding the rendered markup.
type Section struct {
	Title       string
	Description string
}

// Updater rewrites the marker block of a document.
type Updater struct {
	start, end string
	section    Section
	block      *regexp.Regexp
	logger     *log.Logger
}

// NewUpdater creates an Updater for the given marker pair.
func NewUpdater(start, end string, section Section, logger *log.Logger) *Updater {
	return &Updater{
		start:   start,
		end:     end,
		section: section,
		block:   regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end)),
		logger:  logger,
	}
}

// Block returns the complete marker block for markup, markers included.
func (u *Updater) Block(markup string) string {
	var b strings.Builder
	b.WriteString(u.start)
	b.WriteString("\n\n<br>\n\n")
	if u.section.Title != "" {
		fmt.Fprintf(&b, "## %s\n\n", u.section.Title)
	}
	if u.section.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", u.section.Description)
	}
	b.WriteString(markup)
	b.WriteString("\n\n")
	b.WriteString(u.end)
	return b.String()
}

// Apply returns content with every marker region replaced by a fresh block,
// or with a block appended when no complete region exists.
func (u *Updater) Apply(content, markup string) string {
	block := u.Block(markup)
	if u.block.MatchString(content) {
		return u.block.ReplaceAllLiteralString(content, block)
	}
	return content + "\n\n" + block
}

// Render reads path and returns the updated document without writing it.
// A missing file is treated as empty.
func (u *Updater) Render(path, markup string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return u.Apply(string(data), markup), nil
}

// Update writes the artifact's assets, then rewrites the document at path.
func (u *Updater) Update(path string, artifact domain.Artifact) error {
	for _, asset := range artifact.Assets {
		if err := writeFile(asset.Path, asset.Content); err != nil {
			return err
		}
		u.logger.Printf("Wrote %s (%d bytes).", asset.Path, len(asset.Content))
	}
	content, err := u.Render(path, artifact.Markup)
	if err != nil {
		return err
	}
	if err := writeFile(path, []byte(content)); err != nil {
		return err
	}
	u.logger.Printf("Updated %s.", path)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
