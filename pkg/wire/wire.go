// Package wire serializes virtual trees for shipping to a running host.
//
// A payload is a frame (see ReadFrame) around a CBOR envelope encoded with
// Core Deterministic Encoding: the same tree always produces the same
// bytes. The envelope carries the vocabulary version the tree was built
// against; a receiver whose registry has a different major version
// rejects the payload.
//
// Callback properties are transient and never encoded. Decoding is
// transactional: any problem anywhere in the payload returns an error and
// no tree.
package wire

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/mod/semver"

	"github.com/go-drift/vui/pkg/vnode"
)

// Sentinel errors. Decode wraps one of these, or vnode.ErrUnknownKind.
var (
	// ErrMalformed indicates a truncated, corrupt or structurally invalid
	// payload.
	ErrMalformed = errors.New("wire: malformed payload")

	// ErrUnsupportedFormat indicates a frame or envelope format this
	// package does not read.
	ErrUnsupportedFormat = errors.New("wire: unsupported format")

	// ErrVocabulary indicates a tree built against an incompatible
	// vocabulary version.
	ErrVocabulary = errors.New("wire: incompatible vocabulary")

	// ErrUnknownProp indicates a property the receiving kind does not
	// declare.
	ErrUnknownProp = errors.New("wire: unknown property")
)

// Envelope is the top-level CBOR document of a payload.
type Envelope struct {
	Format     uint8  `cbor:"1,keyasint"`
	Vocabulary string `cbor:"2,keyasint"`
	Root       Record `cbor:"3,keyasint"`
}

// Record is one encoded node.
type Record struct {
	Tag      string   `cbor:"1,keyasint"`
	Props    []Field  `cbor:"2,keyasint,omitempty"`
	Children []Record `cbor:"3,keyasint,omitempty"`
}

// Field is one encoded property value.
type Field struct {
	Name  string          `cbor:"1,keyasint"`
	Value cbor.RawMessage `cbor:"2,keyasint"`
}

// Options control Encode.
type Options struct {
	// Vocabulary is the semantic version of the kind set the tree was
	// built with, normally the sender's Registry.Version.
	Vocabulary string
	// Compression selects the body compression.
	Compression Compression
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: 256,
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode serializes the tree rooted at root.
func Encode(root *vnode.Node, opts Options) ([]byte, error) {
	if root == nil {
		return nil, errors.New("wire: nil tree")
	}
	if !semver.IsValid(opts.Vocabulary) {
		return nil, fmt.Errorf("wire: invalid vocabulary version %q", opts.Vocabulary)
	}
	rec, err := toRecord(root)
	if err != nil {
		return nil, err
	}
	body, err := encMode.Marshal(Envelope{
		Format:     FormatVersion,
		Vocabulary: opts.Vocabulary,
		Root:       rec,
	})
	if err != nil {
		return nil, fmt.Errorf("wire: encode envelope: %w", err)
	}
	return seal(body, opts.Compression)
}

func toRecord(n *vnode.Node) (Record, error) {
	rec := Record{Tag: n.Tag()}
	for _, p := range n.Props() {
		if p.Transient() {
			continue
		}
		raw, err := encMode.Marshal(p.Value())
		if err != nil {
			return Record{}, fmt.Errorf("wire: encode %s.%s: %w", n.Tag(), p.Name(), err)
		}
		rec.Props = append(rec.Props, Field{Name: p.Name(), Value: raw})
	}
	for _, c := range n.Children() {
		child, err := toRecord(c)
		if err != nil {
			return Record{}, err
		}
		rec.Children = append(rec.Children, child)
	}
	return rec, nil
}

// Decode reconstructs a tree from data using the kinds in reg.
func Decode(data []byte, reg *vnode.Registry) (*vnode.Node, error) {
	env, err := ReadEnvelope(data)
	if err != nil {
		return nil, err
	}
	if !reg.Accepts(env.Vocabulary) {
		return nil, fmt.Errorf("%w: payload %q, receiver %q", ErrVocabulary, env.Vocabulary, reg.Version())
	}
	return fromRecord(env.Root, reg, vnode.Path{})
}

// ReadEnvelope unframes data and decodes its envelope without resolving
// kinds.
func ReadEnvelope(data []byte) (Envelope, error) {
	_, body, err := ReadFrame(data)
	if err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if err := decMode.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Format != FormatVersion {
		return Envelope{}, fmt.Errorf("%w: envelope format %d", ErrUnsupportedFormat, env.Format)
	}
	return env, nil
}

func fromRecord(rec Record, reg *vnode.Registry, path vnode.Path) (*vnode.Node, error) {
	kind, err := reg.Lookup(rec.Tag)
	if err != nil {
		return nil, fmt.Errorf("at %s: %w", path, err)
	}
	n := vnode.NewNode(kind)
	seen := make(map[string]bool, len(rec.Props))
	for _, f := range rec.Props {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: at %s: %s.%s appears twice", ErrMalformed, path, rec.Tag, f.Name)
		}
		seen[f.Name] = true

		tmpl, ok := kind.Prop(f.Name)
		if !ok || tmpl.Transient() {
			return nil, fmt.Errorf("%w: at %s: %s.%s", ErrUnknownProp, path, rec.Tag, f.Name)
		}
		p, err := tmpl.Decode(func(v any) error { return decMode.Unmarshal(f.Value, v) })
		if err != nil {
			return nil, fmt.Errorf("%w: at %s: %s: %w", ErrMalformed, path, rec.Tag, err)
		}
		if err := n.Put(p); err != nil {
			return nil, fmt.Errorf("%w: at %s: %w", ErrMalformed, path, err)
		}
	}
	for i, c := range rec.Children {
		child, err := fromRecord(c, reg, path.Append(i))
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, fmt.Errorf("%w: at %s: %w", ErrMalformed, path, err)
		}
	}
	return n, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of the
// envelope inside a frame.
func Diagnose(data []byte) (string, error) {
	_, body, err := ReadFrame(data)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(body)
}
