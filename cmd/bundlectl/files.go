package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/syssam/graphbundle/bundle"
	"github.com/syssam/graphbundle/bundle/codec"
)

// pickCodec returns the codec named by format, or the one matching the
// extension of path. Standard input and output default to JSON.
func pickCodec(format, path string) (codec.Codec, error) {
	if format != "" {
		return codec.Lookup(format)
	}
	if path == "-" {
		return codec.JSON{}, nil
	}
	return codec.ForPath(path)
}

// readBundles decodes the bundles in path, "-" being standard input. YAML
// input may hold several documents; other formats hold one bundle.
func readBundles(stdin io.Reader, path, format string) ([]*bundle.Bundle, error) {
	c, err := pickCodec(format, path)
	if err != nil {
		return nil, err
	}
	var data []byte
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if c.Name() == "yaml" {
		bs, err := bundle.DecodeYAMLAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return bs, nil
	}
	b, err := c.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []*bundle.Bundle{b}, nil
}

// writeBundles encodes bs to w. Text formats put one bundle per line, or
// per document for YAML.
func writeBundles(w io.Writer, c codec.Codec, bs []*bundle.Bundle) error {
	for i, b := range bs {
		data, err := c.Marshal(b)
		if err != nil {
			return err
		}
		switch c.Name() {
		case "yaml":
			if i > 0 {
				if _, err := io.WriteString(w, "---\n"); err != nil {
					return err
				}
			}
		case "json":
			data = append(data, '\n')
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
