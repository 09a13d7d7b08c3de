package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/systemstart/kube-prelint/pkg/api"
)

// Document is one YAML document extracted from a manifest file or a
// rendered stream. Kind, Name, and Namespace are best-effort labels for
// the report; Err records a parse failure attributed to this position.
type Document struct {
	Source    string
	Index     int
	Raw       []byte
	Kind      string
	Name      string
	Namespace string
	Err       error
}

// Label names the document for the report: "Kind/name" when available,
// otherwise the source file and document index.
func (d Document) Label() string {
	if d.Kind != "" && d.Name != "" {
		return d.Kind + "/" + d.Name
	}
	if d.Kind != "" {
		return d.Kind
	}
	base := filepath.Base(d.Source)
	if d.Index > 0 {
		return fmt.Sprintf("%s (document %d)", base, d.Index+1)
	}
	return base
}

// SplitFile parses one manifest file into its documents.
func SplitFile(path string) []Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Document{{
			Source: path,
			Err:    api.Errorf(api.KindNotFound, "reading %s: %v", path, err),
		}}
	}
	return SplitStream(data, path)
}

// SplitStream parses a multi-document YAML stream, skipping empty
// documents. A malformed document is recorded in place with a
// parse-error classification; the decoder cannot resynchronize past it,
// so later documents in the same stream are not attempted. A document
// with duplicate mapping keys is likewise recorded as a parse error,
// but splitting continues with the next document.
func SplitStream(data []byte, source string) []Document {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var docs []Document
	index := 0
	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if err == io.EOF {
			break
		}
		if err != nil {
			docs = append(docs, Document{
				Source: source,
				Index:  index,
				Err:    api.Errorf(api.KindParseError, "%s document %d: %v", source, index+1, err),
			})
			break
		}
		if isEmptyDoc(&node) {
			continue
		}

		if key, line := duplicateKey(&node); key != "" {
			docs = append(docs, Document{
				Source: source,
				Index:  index,
				Err: api.Errorf(api.KindParseError,
					"%s document %d: duplicate key %q at line %d", source, index+1, key, line),
			})
			index++
			continue
		}

		docs = append(docs, buildDocument(&node, source, index))
		index++
	}

	return docs
}

func isEmptyDoc(node *yaml.Node) bool {
	if node.Kind == 0 {
		return true
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return true
		}
		c := node.Content[0]
		return c.Kind == yaml.ScalarNode && c.Tag == "!!null"
	}
	return false
}

// duplicateKey finds the first repeated key within any mapping of the
// document. The decoder accepts duplicates silently and keeps the last
// value, which hides a manifest bug, so they are rejected here.
func duplicateKey(node *yaml.Node) (string, int) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range node.Content {
			if key, line := duplicateKey(c); key != "" {
				return key, line
			}
		}
	case yaml.MappingNode:
		seen := make(map[string]bool, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k := node.Content[i]
			if k.Kind == yaml.ScalarNode {
				if seen[k.Value] {
					return k.Value, k.Line
				}
				seen[k.Value] = true
			}
			if key, line := duplicateKey(node.Content[i+1]); key != "" {
				return key, line
			}
		}
	}
	return "", 0
}

func buildDocument(node *yaml.Node, source string, index int) Document {
	d := Document{Source: source, Index: index}

	var fields struct {
		Kind     string `yaml:"kind"`
		Metadata struct {
			Name      string `yaml:"name"`
			Namespace string `yaml:"namespace"`
		} `yaml:"metadata"`
	}
	if err := node.Decode(&fields); err == nil {
		d.Kind = fields.Kind
		d.Name = fields.Metadata.Name
		d.Namespace = fields.Metadata.Namespace
	}

	raw, err := yaml.Marshal(node)
	if err != nil {
		d.Err = api.Errorf(api.KindParseError, "%s document %d: %v", source, index+1, err)
		return d
	}
	d.Raw = raw
	return d
}

// Discover resolves path into the ordered document sequence of every
// manifest file beneath it: file order first, document order within each
// file second. Per-file failures are recorded as placeholder documents
// and do not abort discovery of sibling files.
func Discover(path string) ([]Document, error) {
	files, err := Find(path, nil, nil)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, f := range files {
		docs = append(docs, SplitFile(f)...)
	}
	return docs, nil
}
