// Package publish renders card trees as markdown documents.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"resource-cards/internal/card"
)

type WriteOptions struct {
	IncludeHidden bool
	Overwrite     bool
	// Split writes one page per card (plus an index) instead of one document.
	Split bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteCard writes the markdown for c under toDir/cards.
func WriteCard(c *card.Card, toDir string, opt WriteOptions) (WriteResult, error) {
	if c == nil {
		return WriteResult{}, errors.New("missing card")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	outDir := filepath.Join(filepath.Clean(toDir), "cards")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	ropt := RenderOptions{IncludeHidden: opt.IncludeHidden}

	if !opt.Split {
		md, err := RenderCardMarkdown(c, ropt)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(outDir, c.ID()+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Written: []string{p}}, nil
	}

	indexPath := filepath.Join(outDir, c.ID(), "index.md")
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return WriteResult{}, err
	}
	if err := writeFile(indexPath, []byte(renderIndex(c)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{indexPath}

	// Stop on first error.
	ropt.Shallow = true
	var walk func(k *card.Card) error
	walk = func(k *card.Card) error {
		page, err := RenderCardMarkdown(k, ropt)
		if err != nil {
			return err
		}
		p := filepath.Join(outDir, c.ID(), k.ID()+".md")
		if err := writeFile(p, []byte(page), opt.Overwrite); err != nil {
			return err
		}
		written = append(written, p)
		for _, child := range k.Cards().Items() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(c); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
