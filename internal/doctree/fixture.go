package doctree

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// fixtureFile is the YAML document format consumed by the CLI and the
// serve-mode watcher. It mirrors the host document shape: pages of
// nested containers and text leaves, plus styles, a font catalog and
// an initial selection (addressed by node name).
type fixtureFile struct {
	Document struct {
		Pages []fixtureNode `yaml:"pages"`
	} `yaml:"document"`
	Fonts struct {
		Available []string `yaml:"available"`
	} `yaml:"fonts"`
	Styles    []fixtureStyle `yaml:"styles"`
	Selection []string       `yaml:"selection"`
}

type fixtureNode struct {
	Kind           string        `yaml:"kind"`
	Name           string        `yaml:"name"`
	Locked         bool          `yaml:"locked"`
	Current        bool          `yaml:"current"`
	Unmaterialized bool          `yaml:"unmaterialized"`
	Text           string        `yaml:"text"`
	Spans          []fixtureSpan `yaml:"spans"`
	Children       []fixtureNode `yaml:"children"`
}

type fixtureSpan struct {
	Family string `yaml:"family"`
	Style  string `yaml:"style"`
	Length int    `yaml:"length"`
}

type fixtureStyle struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Family string  `yaml:"family"`
	Style  string  `yaml:"style"`
	Size   float64 `yaml:"size"`
}

// LoadDocument reads a YAML document fixture into a MemDoc.
func LoadDocument(path string) (*MemDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return ParseDocument(data)
}

// ParseDocument builds a MemDoc from YAML fixture bytes.
func ParseDocument(data []byte) (*MemDoc, error) {
	var fix fixtureFile
	if err := yaml.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := NewMemDoc()
	for _, pf := range fix.Document.Pages {
		var page *MemNode
		if pf.Unmaterialized {
			page = doc.AddLazyPage(pf.Name)
		} else {
			page = doc.AddPage(pf.Name)
		}
		if pf.Current {
			doc.SetCurrentPage(page)
		}
		if pf.Unmaterialized {
			continue
		}
		for _, cf := range pf.Children {
			if err := buildNode(page, cf); err != nil {
				return nil, fmt.Errorf("page %q: %w", pf.Name, err)
			}
		}
	}

	var catalog []fontref.FontRef
	for _, key := range fix.Fonts.Available {
		ref, err := fontref.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("fonts.available: %w", err)
		}
		catalog = append(catalog, ref)
	}
	if len(catalog) > 0 {
		doc.SetFontCatalog(catalog...)
	}

	for _, sf := range fix.Styles {
		doc.AddTextStyle(TextStyle{
			ID:   sf.ID,
			Name: sf.Name,
			Font: fontref.New(sf.Family, sf.Style),
			Size: sf.Size,
		})
	}

	if len(fix.Selection) > 0 {
		var selected []Node
		for _, name := range fix.Selection {
			node, ok := doc.FindByName(name)
			if !ok {
				return nil, fmt.Errorf("selection refers to unknown node %q", name)
			}
			selected = append(selected, node)
		}
		if err := doc.SetSelection(selected); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func buildNode(parent *MemNode, fix fixtureNode) error {
	switch fix.Kind {
	case "text":
		spans := make([]Span, 0, len(fix.Spans))
		for _, sf := range fix.Spans {
			spans = append(spans, Span{Font: fontref.New(sf.Family, sf.Style), Length: sf.Length})
		}
		el, err := parent.AddText(fix.Name, fix.Text, spans...)
		if err != nil {
			return err
		}
		el.locked = fix.Locked
		return nil
	case "frame", "group", "":
		frame := parent.AddFrame(fix.Name)
		frame.locked = fix.Locked
		frame.materialized = !fix.Unmaterialized
		for _, cf := range fix.Children {
			if err := buildNode(frame, cf); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("node %q: unknown kind %q", fix.Name, fix.Kind)
	}
}
