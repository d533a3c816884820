// Package wsdl parses the service description document the API ships and
// answers the two questions the client needs at dispatch time: which
// operations exist, and where the service lives.
//
// This is deliberately not a full WSDL implementation. Message schemas and
// type definitions stay in the document; operations are dispatched by name
// and their payloads are assembled by the caller.
package wsdl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/beevik/etree"
)

// Definitions holds the parsed service description.
type Definitions struct {
	doc             *etree.Document
	targetNamespace string
	location        string
	operations      map[string]struct{}
}

// Parse reads a WSDL document. The document is expected to use the
// conventional wsdl and soap prefixes, as the bundled Zuora WSDL does.
func Parse(r io.Reader) (*Definitions, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing wsdl: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "definitions" {
		return nil, fmt.Errorf("parsing wsdl: document root is not wsdl:definitions")
	}

	d := &Definitions{
		doc:             doc,
		targetNamespace: root.SelectAttrValue("targetNamespace", ""),
		operations:      make(map[string]struct{}),
	}

	for _, op := range doc.FindElements("//wsdl:binding/wsdl:operation") {
		if name := op.SelectAttrValue("name", ""); name != "" {
			d.operations[name] = struct{}{}
		}
	}
	if len(d.operations) == 0 {
		return nil, fmt.Errorf("parsing wsdl: no binding operations found")
	}

	if addr := doc.FindElement("//wsdl:service/wsdl:port/soap:address"); addr != nil {
		d.location = addr.SelectAttrValue("location", "")
	}

	return d, nil
}

// ParseBytes parses a WSDL document held in memory.
func ParseBytes(data []byte) (*Definitions, error) {
	return Parse(bytes.NewReader(data))
}

// ParseFile parses a WSDL document from disk.
func ParseFile(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wsdl: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Operations returns the names of all bound operations, sorted.
func (d *Definitions) Operations() []string {
	names := make([]string, 0, len(d.operations))
	for name := range d.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasOperation reports whether the service binds the named operation.
func (d *Definitions) HasOperation(name string) bool {
	_, ok := d.operations[name]
	return ok
}

// TargetNamespace returns the definitions' target namespace.
func (d *Definitions) TargetNamespace() string {
	return d.targetNamespace
}

// Location returns the endpoint address the document advertises. The client
// overrides this with its own sandbox/production selection; it is exposed
// for diagnostics.
func (d *Definitions) Location() string {
	return d.location
}
