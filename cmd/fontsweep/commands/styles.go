package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

// StyleCmd groups the text style subcommands.
type StyleCmd struct {
	List   StyleListCmd   `cmd:"" default:"withargs" help:"List defined text styles"`
	Create StyleCreateCmd `cmd:"" help:"Create a text style for a font"`
	Apply  StyleApplyCmd  `cmd:"" help:"Apply a style to elements dominated by a font"`
}

// StyleListCmd lists the document's text styles.
type StyleListCmd struct{}

// Run executes the style list command.
func (StyleListCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	result, err := svc.Scan(context.Background(), "document")
	if err != nil {
		return err
	}
	if len(result.TextStyles) == 0 {
		fmt.Println("No text styles defined.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFONT\tSIZE")
	for _, style := range result.TextStyles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\n", style.ID, style.Name, style.Font, style.Size)
	}
	return w.Flush()
}

// StyleCreateCmd creates a named style.
type StyleCreateCmd struct {
	Font string  `arg:"" help:"Font for the style, as 'Family|Style' or bare family"`
	Name string  `short:"n" help:"Style name (defaults to the font name)"`
	Size float64 `help:"Font size in points"`
}

// Run executes the style create command.
func (c *StyleCreateCmd) Run(_ *Global, root *CLI) error {
	font, err := parseFontSpec(c.Font)
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	result, err := svc.CreateStyle(context.Background(), protocol.CreateTextStyle{
		Family: font.Family,
		Style:  font.Style,
		Name:   c.Name,
		Size:   c.Size,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created style %q (%s)\n", result.StyleName, result.StyleID)
	return nil
}

// StyleApplyCmd bulk-applies an existing style.
type StyleApplyCmd struct {
	StyleID string `arg:"" help:"ID of the style to apply"`
	Font    string `arg:"" help:"Target font, as 'Family|Style' or bare family"`
	Scope   string `short:"s" default:"document" enum:"selection,page,document" help:"Application scope"`
}

// Run executes the style apply command.
func (a *StyleApplyCmd) Run(_ *Global, root *CLI) error {
	font, err := parseFontSpec(a.Font)
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	result, err := svc.ApplyStyle(context.Background(), protocol.ApplyTextStyle{
		StyleID: a.StyleID,
		Family:  font.Family,
		Style:   font.Style,
		Scope:   a.Scope,
	})
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		fmt.Printf("error: %s\n", msg)
	}
	fmt.Printf("applied style to %d elements\n", result.AppliedCount)
	return nil
}
