package datasource

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// ErrEmptyLabel is returned for outline nodes without a label.
var ErrEmptyLabel = errors.New("outline node has no label")

// Ref is the payload attached to every node loaded from a source. It is a
// comparable value, so a node keeps its identity across reloads as long as
// its ID is stable.
type Ref struct {
	Source string // absolute path of the source
	ID     string // node id, or its label path when the source has none
}

// Value is a node's secondary text. In JSON it also accepts numbers and
// booleans so `"value": 12` works like it does in YAML.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*v = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("outline value must be a scalar, got %s", b)
	default:
		*v = Value(b)
	}
	return nil
}

// OutlineNode is one entry of an outline document.
type OutlineNode struct {
	ID       string        `yaml:"id,omitempty" json:"id,omitempty"`
	Label    string        `yaml:"label" json:"label"`
	Value    Value         `yaml:"value,omitempty" json:"value,omitempty"`
	Kind     string        `yaml:"kind,omitempty" json:"kind,omitempty"`
	Expanded bool          `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Children []OutlineNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// Outline is a whole document.
type Outline struct {
	Title string        `yaml:"title,omitempty" json:"title,omitempty"`
	Nodes []OutlineNode `yaml:"nodes" json:"nodes"`
}

// DecodeYAML parses an outline document in YAML.
func DecodeYAML(data []byte) (Outline, error) {
	var o Outline
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Outline{}, fmt.Errorf("parsing yaml outline: %w", err)
	}
	return o, o.Validate()
}

// DecodeJSON parses an outline document in JSON.
func DecodeJSON(data []byte) (Outline, error) {
	var o Outline
	if err := json.Unmarshal(data, &o); err != nil {
		return Outline{}, fmt.Errorf("parsing json outline: %w", err)
	}
	return o, o.Validate()
}

// ReadOutline reads a YAML, JSON or text breakdown file.
func ReadOutline(s DataSource) (Outline, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Outline{}, fmt.Errorf("reading outline: %w", err)
	}
	switch s.Type {
	case SourceTypeYAML:
		return DecodeYAML(data)
	case SourceTypeJSON:
		return DecodeJSON(data)
	case SourceTypeText:
		o, err := ParseBreakdown(bytes.NewReader(data))
		if err == nil && o.Title == "" {
			o.Title = s.Name()
		}
		return o, err
	default:
		return Outline{}, fmt.Errorf("%w: %s is not an outline document", ErrUnknownType, s.Type)
	}
}

// Validate checks every node has a label.
func (o Outline) Validate() error {
	var check func(nodes []OutlineNode, path []string) error
	check = func(nodes []OutlineNode, path []string) error {
		for i, n := range nodes {
			if strings.TrimSpace(n.Label) == "" {
				where := strings.Join(append(path, fmt.Sprintf("#%d", i+1)), " > ")
				return fmt.Errorf("%w at %s", ErrEmptyLabel, where)
			}
			if err := check(n.Children, append(path, n.Label)); err != nil {
				return err
			}
		}
		return nil
	}
	return check(o.Nodes, nil)
}

// Count returns the number of nodes in the document.
func (o Outline) Count() int {
	var count func([]OutlineNode) int
	count = func(nodes []OutlineNode) int {
		n := len(nodes)
		for _, c := range nodes {
			n += count(c.Children)
		}
		return n
	}
	return count(o.Nodes)
}

// Specs converts the document into engine specs. Nodes without an ID get
// their label path as identity.
func (o Outline) Specs(source string) []nav.Spec {
	var convert func(nodes []OutlineNode, path []string) []nav.Spec
	convert = func(nodes []OutlineNode, path []string) []nav.Spec {
		if len(nodes) == 0 {
			return nil
		}
		specs := make([]nav.Spec, len(nodes))
		for i, n := range nodes {
			p := append(path[:len(path):len(path)], n.Label)
			id := n.ID
			if id == "" {
				id = nav.JoinPath(p...)
			}
			specs[i] = nav.Spec{
				Label:    n.Label,
				Value:    string(n.Value),
				Kind:     kindOf(n.Kind, len(n.Children) > 0),
				Payload:  Ref{Source: source, ID: id},
				Expanded: n.Expanded,
				Children: convert(n.Children, p),
			}
		}
		return specs
	}
	return convert(o.Nodes, nil)
}

// OutlineFromSpecs turns engine specs back into a document, building lazy
// children on the way. IDs come from Ref or string payloads.
func OutlineFromSpecs(title string, specs []nav.Spec) (Outline, error) {
	var convert func(specs []nav.Spec) ([]OutlineNode, error)
	convert = func(specs []nav.Spec) ([]OutlineNode, error) {
		nodes := make([]OutlineNode, 0, len(specs))
		for _, s := range specs {
			children := s.Children
			if len(children) == 0 && s.Lazy != nil {
				built, err := s.Lazy(nav.Node{Label: s.Label, Value: s.Value, Kind: s.Kind, Payload: s.Payload})
				if err != nil {
					return nil, fmt.Errorf("building children of %q: %w", s.Label, err)
				}
				children = built
			}
			kids, err := convert(children)
			if err != nil {
				return nil, err
			}
			n := OutlineNode{
				Label:    s.Label,
				Value:    Value(s.Value),
				Kind:     string(s.Kind),
				Expanded: s.Expanded,
				Children: kids,
			}
			switch p := s.Payload.(type) {
			case Ref:
				n.ID = p.ID
			case string:
				n.ID = p
			case fmt.Stringer:
				n.ID = p.String()
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	}
	nodes, err := convert(specs)
	if err != nil {
		return Outline{}, err
	}
	return Outline{Title: title, Nodes: nodes}, nil
}

func kindOf(kind string, hasChildren bool) nav.Kind {
	if kind != "" {
		return nav.Kind(strings.ToLower(kind))
	}
	if hasChildren {
		return nav.KindCategory
	}
	return nav.KindInfo
}

// EncodeJSON renders the outline as indented JSON.
func (o Outline) EncodeJSON() ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}
