package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/fontsweep/internal/protocol"
)

// ReplaceCmd implements the 'replace' command.
type ReplaceCmd struct {
	Scope string   `short:"s" default:"document" enum:"selection,page,document" help:"Replacement scope"`
	Map   []string `short:"m" required:"" help:"Mapping 'Old Family|Style=New Family|Style' (repeatable)"`
}

// Run executes the replace command.
func (r *ReplaceCmd) Run(_ *Global, root *CLI) error {
	mappings, err := parseMappings(r.Map)
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

	svc.Bus().Subscribe(protocol.TypeProgress, func(m protocol.Message) error {
		if note, ok := m.(protocol.ProgressNote); ok {
			fmt.Printf("progress %d%% (%d/%d)\n", note.Progress, note.Processed, note.Total)
		}
		return nil
	})

	result, err := svc.Replace(context.Background(), r.Scope, mappings)
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		fmt.Printf("error: %s\n", msg)
	}
	if result.Success {
		if result.Replaced == 0 {
			fmt.Println("No fonts were replaced.")
		} else {
			fmt.Printf("Replaced fonts in %d ranges.\n", result.Replaced)
		}
		return nil
	}
	return fmt.Errorf("replacement failed after %d ranges", result.Replaced)
}

func parseMappings(raw []string) ([]protocol.MappingPayload, error) {
	mappings := make([]protocol.MappingPayload, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid mapping %q: expected 'old=new'", entry)
		}
		oldFont, err := parseFontSpec(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid mapping %q: %w", entry, err)
		}
		newFont, err := parseFontSpec(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid mapping %q: %w", entry, err)
		}
		mappings = append(mappings, protocol.MappingPayload{OldFont: oldFont, NewFont: newFont})
	}
	return mappings, nil
}
