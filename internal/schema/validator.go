// Package schema checks inbound book payloads against the create and update
// JSON schemas before anything reaches storage.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Name selects one of the statically declared schemas.
type Name string

const (
	// Create requires all eight book attributes.
	Create Name = "book_create.json"
	// Update accepts any subset of the mutable attributes and rejects isbn.
	Update Name = "book_update.json"
)

//go:embed schemas/*.json
var files embed.FS

var compiled = mustCompile(Create, Update)

func mustCompile(names ...Name) map[Name]*jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7

	for _, name := range names {
		bs, err := files.ReadFile("schemas/" + string(name))
		if err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}

		if err := c.AddResource(string(name), bytes.NewReader(bs)); err != nil {
			panic(fmt.Sprintf("load schema %s: %v", name, err))
		}
	}

	ret := make(map[Name]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(string(name))
		if err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", name, err))
		}

		ret[name] = s
	}

	return ret
}

// Decode reads a single JSON document keeping numbers as json.Number, so that
// integer constraints can tell 10 from 10.5.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level value")
	}

	return v, nil
}

// Validate returns every violation of the named schema found in payload,
// sorted by location. An empty result means the payload is accepted.
func Validate(payload any, name Name) []string {
	s, ok := compiled[name]
	if !ok {
		panic("unknown schema " + string(name))
	}

	err := s.Validate(payload)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	var leaves []*jsonschema.ValidationError
	collectLeaves(ve, &leaves)

	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].InstanceLocation != leaves[j].InstanceLocation {
			return leaves[i].InstanceLocation < leaves[j].InstanceLocation
		}
		return leaves[i].Message < leaves[j].Message
	})

	violations := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		violations = append(violations, describe(leaf))
	}

	return violations
}

func collectLeaves(ve *jsonschema.ValidationError, into *[]*jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		*into = append(*into, ve)
		return
	}

	for _, cause := range ve.Causes {
		collectLeaves(cause, into)
	}
}

func describe(ve *jsonschema.ValidationError) string {
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		return ve.Message
	}

	return field + ": " + ve.Message
}
