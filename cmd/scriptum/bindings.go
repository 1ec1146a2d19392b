package main

import (
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/scriptum/engine"
	"github.com/npillmayer/scriptum/value"
	"gopkg.in/yaml.v3"
)

// loadBindings reads external bindings from a YAML file. The top level of the
// file has to be a mapping from names to values.
func loadBindings(filename string) (engine.Bindings, error) {
	if filename == "" {
		return engine.Bindings{}, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBindings(f)
}

func parseBindings(r io.Reader) (engine.Bindings, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return engine.Bindings{}, nil
		}
		return nil, fmt.Errorf("cannot decode bindings: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("bindings must be a mapping, line %d", root.Line)
	}
	bindings := engine.Bindings{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		v, err := nodeValue(root.Content[i+1])
		if err != nil {
			return nil, err
		}
		bindings[root.Content[i].Value] = v
	}
	tracer().Debugf("loaded %d bindings", len(bindings))
	return bindings, nil
}

// nodeValue converts a YAML node to a value. Mappings keep the order of their keys.
func nodeValue(n *yaml.Node) (*value.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Void, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		l := value.NewList()
		for _, c := range n.Content {
			e, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			l.AsList().Append(e)
		}
		return l, nil
	case yaml.MappingNode:
		d := value.NewDict()
		for i := 0; i+1 < len(n.Content); i += 2 {
			e, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			d.AsDict().Put(n.Content[i].Value, e)
		}
		return d, nil
	case yaml.ScalarNode:
		var x interface{}
		if err := n.Decode(&x); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		switch s := x.(type) {
		case nil:
			return value.Void, nil
		case bool:
			return value.Bool(s), nil
		case int:
			return value.Int(int64(s)), nil
		case int64:
			return value.Int(s), nil
		case float64:
			return value.Float(s), nil
		case string:
			return value.String(s), nil
		}
		return value.String(n.Value), nil // timestamps and the like
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}
