package commands

import (
	"context"
	"fmt"
)

// SelectCmd implements the 'select' command.
type SelectCmd struct {
	Font  string `arg:"" help:"Font to select, as 'Family|Style' or bare family"`
	Scope string `short:"s" default:"document" enum:"selection,page,document" help:"Search scope"`
}

// Run executes the select command.
func (s *SelectCmd) Run(_ *Global, root *CLI) error {
	font, err := parseFontSpec(s.Font)
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

	result, err := svc.SelectFont(context.Background(), font.Family, font.Style, s.Scope)
	if err != nil {
		return err
	}
	fmt.Printf("selected %d elements using %s\n", result.Count, font)
	return nil
}
