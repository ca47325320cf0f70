// Package xmlprop is the normative XML property wire format from
// spec §6: tags `<bool|char|int|uint|double|string id="name"
// description="desc">value</...>` and `<bag type="T" name="N">...
// </bag>`. It's the only XML format anywhere in the corpus this
// module draws from, so the marshaller is written directly against
// stdlib encoding/xml's streaming Encoder/Decoder rather than an
// in-corpus library (see DESIGN.md for the justification).
package xmlprop

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/roman-aguilera/rtkernel/property"
)

// Marshal writes b to w in the normative tag vocabulary.
func Marshal(w io.Writer, b *property.Bag) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := writeBag(enc, b, "Bag"); err != nil {
		return err
	}
	return enc.Flush()
}

func writeBag(enc *xml.Encoder, b *property.Bag, typ string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "bag"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "type"}, Value: typ},
			{Name: xml.Name{Local: "name"}, Value: b.Name},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, e := range b.Entries() {
		if err := writeEntry(enc, e); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeEntry(enc *xml.Encoder, e property.Entry) error {
	switch {
	case e.Bool != nil:
		return writeLeaf(enc, "bool", e.Bool.Name, e.Bool.Description, strconv.FormatBool(e.Bool.Get()))
	case e.Rune != nil:
		return writeLeaf(enc, "char", e.Rune.Name, e.Rune.Description, string(e.Rune.Get()))
	case e.Int != nil:
		return writeLeaf(enc, "int", e.Int.Name, e.Int.Description, strconv.FormatInt(e.Int.Get(), 10))
	case e.Uint != nil:
		return writeLeaf(enc, "uint", e.Uint.Name, e.Uint.Description, strconv.FormatUint(e.Uint.Get(), 10))
	case e.Float != nil:
		return writeLeaf(enc, "double", e.Float.Name, e.Float.Description, strconv.FormatFloat(e.Float.Get(), 'g', -1, 64))
	case e.Str != nil:
		return writeLeaf(enc, "string", e.Str.Name, e.Str.Description, e.Str.Get())
	case e.Sub != nil:
		return writeBag(enc, e.Sub, "Bag")
	default:
		return fmt.Errorf("xmlprop: empty entry")
	}
}

func writeLeaf(enc *xml.Encoder, tag, id, description, value string) error {
	start := xml.StartElement{
		Name: xml.Name{Local: tag},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "id"}, Value: id},
			{Name: xml.Name{Local: "description"}, Value: description},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// Unmarshal reads a bag from r in the normative tag vocabulary.
func Unmarshal(r io.Reader) (*property.Bag, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlprop: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "bag" {
			return readBag(dec, start)
		}
	}
}

func readBag(dec *xml.Decoder, start xml.StartElement) (*property.Bag, error) {
	name := attr(start, "name")
	b := property.NewBag(name, "")
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlprop: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e, err := readEntry(dec, t)
			if err != nil {
				return nil, err
			}
			if err := b.Add(e); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "bag" {
				return b, nil
			}
		}
	}
}

func readEntry(dec *xml.Decoder, start xml.StartElement) (property.Entry, error) {
	if start.Name.Local == "bag" {
		sub, err := readBag(dec, start)
		if err != nil {
			return property.Entry{}, err
		}
		return property.Entry{Sub: sub}, nil
	}

	id := attr(start, "id")
	desc := attr(start, "description")
	value, err := readCharData(dec, start.Name.Local)
	if err != nil {
		return property.Entry{}, err
	}

	switch start.Name.Local {
	case "bool":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return property.Entry{}, fmt.Errorf("xmlprop: bool %q: %w", id, err)
		}
		return property.Entry{Bool: property.NewProperty(id, desc, v)}, nil
	case "char":
		r := []rune(value)
		if len(r) != 1 {
			return property.Entry{}, fmt.Errorf("xmlprop: char %q: expected exactly one rune", id)
		}
		return property.Entry{Rune: property.NewProperty(id, desc, r[0])}, nil
	case "int":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return property.Entry{}, fmt.Errorf("xmlprop: int %q: %w", id, err)
		}
		return property.Entry{Int: property.NewProperty(id, desc, v)}, nil
	case "uint":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return property.Entry{}, fmt.Errorf("xmlprop: uint %q: %w", id, err)
		}
		return property.Entry{Uint: property.NewProperty(id, desc, v)}, nil
	case "double":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return property.Entry{}, fmt.Errorf("xmlprop: double %q: %w", id, err)
		}
		return property.Entry{Float: property.NewProperty(id, desc, v)}, nil
	case "string":
		return property.Entry{Str: property.NewProperty(id, desc, value)}, nil
	default:
		return property.Entry{}, fmt.Errorf("xmlprop: unrecognized tag %q", start.Name.Local)
	}
}

func readCharData(dec *xml.Decoder, tag string) (string, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			// Keep reading until the matching end element, in case the
			// decoder splits CharData across multiple tokens.
			value := string(t)
			for {
				next, err := dec.Token()
				if err != nil {
					return "", err
				}
				if end, ok := next.(xml.EndElement); ok && end.Name.Local == tag {
					return value, nil
				}
				if cd, ok := next.(xml.CharData); ok {
					value += string(cd)
				}
			}
		case xml.EndElement:
			if t.Name.Local == tag {
				return "", nil
			}
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Encoder implements property.Marshaller against a fixed destination
// writer, for callers that hold a property.Marshaller value rather
// than calling Marshal directly (e.g. a property-persistence
// extension that doesn't care which wire format it's driving).
type Encoder struct{ w io.Writer }

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// MarshalBag writes b to the encoder's destination.
func (e *Encoder) MarshalBag(b *property.Bag) error { return Marshal(e.w, b) }

// Decoder implements property.Demarshaller against a fixed source
// reader.
type Decoder struct{ r io.Reader }

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// DemarshalBag reads a bag from the decoder's source.
func (d *Decoder) DemarshalBag() (*property.Bag, error) { return Unmarshal(d.r) }

var (
	_ property.Marshaller   = (*Encoder)(nil)
	_ property.Demarshaller = (*Decoder)(nil)
)

// LoadFile reads a bag from path. If ignoreMissingFiles is true and
// the file does not exist, an empty bag is returned with no error
// (spec §6: "ignoreMissingFiles... absent property files are treated
// as empty bags").
func LoadFile(path string, ignoreMissingFiles bool) (*property.Bag, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && ignoreMissingFiles {
			return property.NewBag("Bag", ""), nil
		}
		return nil, fmt.Errorf("xmlprop: open %s: %w", path, err)
	}
	defer f.Close()
	return Unmarshal(f)
}

// SaveFile writes b to path, creating or truncating it.
func SaveFile(path string, b *property.Bag) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("xmlprop: create %s: %w", path, err)
	}
	defer f.Close()
	return Marshal(f, b)
}
