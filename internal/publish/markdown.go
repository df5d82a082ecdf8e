package publish

import (
	"bytes"
	"fmt"
	"strings"

	"resource-cards/internal/card"
)

type RenderOptions struct {
	// IncludeHidden keeps widgets whose visible flag is false.
	IncludeHidden bool
	// Shallow leaves nested cards out.
	Shallow bool
}

// RenderCardMarkdown renders a card tree as one markdown document. Nested
// cards become deeper headings (capped at h6).
func RenderCardMarkdown(c *card.Card, opt RenderOptions) (string, error) {
	if c == nil {
		return "", fmt.Errorf("missing card")
	}
	var buf bytes.Buffer
	renderCard(&buf, c, 1, opt)
	return buf.String(), nil
}

func renderCard(buf *bytes.Buffer, c *card.Card, depth int, opt RenderOptions) {
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	heading := strings.Repeat("#", min(depth, 6))

	writeLn(heading + " " + displayName(c))
	writeLn("")

	writeLn("- ID: " + c.ID())
	if v := strings.TrimSpace(c.Cardinality().Get()); v != "" {
		writeLn("- Cardinality: " + v)
	}
	if c.Visible().Defined() && !c.Visible().Get() {
		writeLn("- Hidden")
	}
	if c.Disabled().Get() {
		writeLn("- Disabled")
	}
	writeLn("")

	if v := strings.TrimSpace(c.Instructions().Get()); v != "" {
		writeLn(v)
		writeLn("")
	}
	if c.HelpEnabled().Get() {
		if v := strings.TrimSpace(c.HelpText().Get()); v != "" {
			t := strings.TrimSpace(c.HelpTitle().Get())
			if t == "" {
				t = "Help"
			}
			writeLn("> **" + t + "**")
			for _, line := range strings.Split(v, "\n") {
				writeLn("> " + line)
			}
			writeLn("")
		}
	}

	rows := []string{}
	for _, w := range c.Widgets().Items() {
		if !opt.IncludeHidden && w.Visible().Defined() && !w.Visible().Get() {
			continue
		}
		label := strings.TrimSpace(w.Label().Get())
		if label == "" {
			label = w.Node().Name()
		}
		flags := ""
		if w.Disabled().Get() {
			flags = "disabled"
		}
		rows = append(rows, fmt.Sprintf("| %d | %s | %s | %s | %s |",
			w.SortOrder().Get(), cell(label), cell(w.Node().Name()), cell(w.Node().Datatype()), flags))
	}
	if len(rows) > 0 {
		writeLn("| # | Label | Node | Datatype | |")
		writeLn("|---|---|---|---|---|")
		for _, r := range rows {
			writeLn(r)
		}
		writeLn("")
	}

	if opt.Shallow {
		return
	}
	for _, child := range c.Cards().Items() {
		renderCard(buf, child, depth+1, opt)
	}
}

// renderIndex lists the card tree as nested links to per-card pages.
func renderIndex(root *card.Card) string {
	var buf bytes.Buffer
	buf.WriteString("# " + displayName(root) + "\n\n")
	var walk func(c *card.Card, depth int)
	walk = func(c *card.Card, depth int) {
		fmt.Fprintf(&buf, "%s- [%s](%s.md)\n", strings.Repeat("  ", depth), displayName(c), c.ID())
		for _, child := range c.Cards().Items() {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
	return buf.String()
}

func displayName(c *card.Card) string {
	if n := strings.TrimSpace(c.Name().Get()); n != "" {
		return n
	}
	return c.ID()
}

func cell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}
