// Package render prints decoded plist values as a pretty dump, as JSON or as YAML.
package render

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gum/catplist"
	"gopkg.in/yaml.v3"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// A Renderer writes a value to w.
type Renderer func(w io.Writer, value catplist.Value) error

// Formats lists the names accepted by For.
var Formats = []string{"pretty", "json", "yaml"}

// For returns the renderer for a format name. "python" is accepted as an alias for
// "pretty".
func For(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "pretty", "python":
		return Pretty, nil
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("unknown format %q, want one of %s", format, strings.Join(Formats, ", "))
	}
}

var prettyConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Pretty dumps the value with go-spew. UUIDs and date-times are printed through their
// String methods.
func Pretty(w io.Writer, value catplist.Value) error {
	prettyConfig.Fdump(w, value.Interface())
	return nil
}

// JSON writes the value as a single line of JSON.
func JSON(w io.Writer, value catplist.Value) error {
	return json.NewEncoder(w).Encode(value)
}

// YAML writes the value as a YAML document. Mapping order is kept.
func YAML(w io.Writer, value catplist.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(yamlNode(value)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return enc.Close()
}

func yamlNode(value catplist.Value) *yaml.Node {
	scalar := func(tag, text string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	}

	switch value.Kind() {
	case catplist.KindBool:
		b, _ := value.Bool()
		return scalar("!!bool", strconv.FormatBool(b))

	case catplist.KindInt:
		i, _ := value.Int()
		return scalar("!!int", strconv.FormatInt(i, 10))

	case catplist.KindFloat:
		f, _ := value.Float()
		return scalar("!!float", yamlFloat(f))

	case catplist.KindText, catplist.KindUUID:
		text, _ := value.String()
		return scalar("!!str", text)

	case catplist.KindDateTime:
		t, _ := value.AsTime()
		return scalar("!!timestamp", t.Format(time.RFC3339Nano))

	case catplist.KindBytes:
		data, _ := value.Bytes()
		return scalar("!!binary", base64.StdEncoding.EncodeToString(data))

	case catplist.KindDecodeError:
		return scalar("!!str", "$ERROR: "+value.Message())

	case catplist.KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, element := range value.Elements() {
			node.Content = append(node.Content, yamlNode(element))
		}

		return node

	case catplist.KindMapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, element := range value.Map().All() {
			node.Content = append(node.Content, scalar("!!str", key), yamlNode(element))
		}

		return node

	default:
		return scalar("!!null", "null")
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		text := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(text, ".e") {
			// keep it a float when read back
			text += ".0"
		}

		return text
	}
}
