// Package image serializes chunks for caching and tooling. Images are
// encoded as canonical CBOR so identical chunks produce identical bytes
// (apart from the image ID).
package image

import (
	"fmt"
	"math"
	"os"

	"github.com/cloudcmds/lox/bytecode"
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/value"
	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// FormatVersion is the image format written by this package.
const FormatVersion = 1

// maxElements is the largest array the decoder accepts. Line tables and
// constant pools can both grow past the library default.
const maxElements = math.MaxInt32

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
	dm, err := cbor.DecOptions{MaxArrayElements: maxElements}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Image is the serialized form of a chunk.
type Image struct {
	ID        string        `cbor:"1,keyasint" json:"id"`
	Version   uint8         `cbor:"2,keyasint" json:"version"`
	Name      string        `cbor:"3,keyasint,omitempty" json:"name,omitempty"`
	Code      []byte        `cbor:"4,keyasint" json:"code"`
	Lines     []LineDef     `cbor:"5,keyasint,omitempty" json:"lines,omitempty"`
	Constants []ConstantDef `cbor:"6,keyasint,omitempty" json:"constants,omitempty"`
}

// LineDef is one entry of the compressed line table.
type LineDef struct {
	Offset int `cbor:"1,keyasint" json:"offset"`
	Line   int `cbor:"2,keyasint" json:"line"`
}

// ConstantDef is one constant pool entry.
type ConstantDef struct {
	Kind   value.Kind `cbor:"1,keyasint" json:"kind"`
	Bool   bool       `cbor:"2,keyasint,omitempty" json:"bool,omitempty"`
	Number float64    `cbor:"3,keyasint" json:"number"`
	String string     `cbor:"4,keyasint,omitempty" json:"string,omitempty"`
}

// FromChunk captures the contents of c under a freshly generated ID.
func FromChunk(c *bytecode.Chunk, name string) (*Image, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("image: generate id: %w", err)
	}
	img := &Image{
		ID:      id.String(),
		Version: FormatVersion,
		Name:    name,
		Code:    c.Code(),
	}
	for _, run := range c.LineRuns() {
		img.Lines = append(img.Lines, LineDef{Offset: run.Offset, Line: run.Line})
	}
	for _, v := range c.Constants() {
		img.Constants = append(img.Constants, constantDefFromValue(v))
	}
	return img, nil
}

// Chunk rebuilds a chunk by replaying the image through the chunk write
// API. The stored line table is validated first and the rebuilt table must
// match it exactly, so a run that merges with its neighbor is rejected.
func (img *Image) Chunk(opts ...bytecode.Option) (*bytecode.Chunk, error) {
	const opName = "image.Chunk"
	runs := make([]bytecode.LineRun, len(img.Lines))
	for i, def := range img.Lines {
		runs[i] = bytecode.LineRun{Offset: def.Offset, Line: def.Line}
	}
	if err := bytecode.ValidateLineRuns(runs, len(img.Code)); err != nil {
		return nil, err
	}
	c := bytecode.New(append([]bytecode.Option{
		bytecode.WithCapacity(len(img.Code), len(img.Lines)),
	}, opts...)...)
	for _, def := range img.Constants {
		v, err := def.Value()
		if err != nil {
			return nil, err
		}
		if _, err := c.AddConstant(v); err != nil {
			return nil, err
		}
	}
	run := 0
	for offset, b := range img.Code {
		for run+1 < len(img.Lines) && img.Lines[run+1].Offset <= offset {
			run++
		}
		c.Write(b, img.Lines[run].Line)
	}
	got := c.LineRuns()
	if len(got) != len(img.Lines) {
		return nil, errz.Invariantf(opName, 0, "line table has %d runs, rebuilt %d", len(img.Lines), len(got))
	}
	for i, r := range got {
		if r.Offset != img.Lines[i].Offset || r.Line != img.Lines[i].Line {
			return nil, errz.Invariantf(opName, i, "line run %d is %d@%d, rebuilt %s",
				i, img.Lines[i].Line, img.Lines[i].Offset, r)
		}
	}
	return c, nil
}

// Value converts the definition back into a value.
func (def ConstantDef) Value() (value.Value, error) {
	switch def.Kind {
	case value.KindNil:
		return value.Nil(), nil
	case value.KindBool:
		return value.Bool(def.Bool), nil
	case value.KindNumber:
		return value.Number(def.Number), nil
	case value.KindString:
		return value.String(def.String), nil
	default:
		return value.Value{}, errz.Decodef("image.ConstantDef", 0, "unknown constant kind %d", def.Kind)
	}
}

func constantDefFromValue(v value.Value) ConstantDef {
	def := ConstantDef{Kind: v.Kind()}
	switch v.Kind() {
	case value.KindBool:
		def.Bool, _ = v.AsBool()
	case value.KindNumber:
		def.Number, _ = v.AsNumber()
	case value.KindString:
		def.String, _ = v.AsString()
	}
	return def
}

// Marshal serializes an image to CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cborDecMode.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Version != FormatVersion {
		return nil, errz.Decodef("image.Unmarshal", 0, "unsupported image version %d", img.Version)
	}
	return &img, nil
}

// WriteFile encodes c and writes it to path.
func WriteFile(path string, c *bytecode.Chunk, name string) (*Image, error) {
	img, err := FromChunk(c, name)
	if err != nil {
		return nil, err
	}
	data, err := Marshal(img)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("image: write %s: %w", path, err)
	}
	return img, nil
}

// ReadFile reads and decodes the image stored at path.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
