package soap

import (
	"github.com/beevik/etree"
)

// Request assembles an outbound SOAP 1.1 envelope for one API operation.
//
// The body is built with etree so child order is exactly insertion order.
// The remote API is order-sensitive in places (login requires username
// before password), which rules out map-based field encoding.
type Request struct {
	doc    *etree.Document
	header *etree.Element
	op     *etree.Element
}

// NewRequest creates the envelope skeleton for the named operation. The
// operation element is placed in the API namespace (zns prefix); object
// fields may use the ons prefix.
func NewRequest(operation string) *Request {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", NsSOAPEnv)
	env.CreateAttr("xmlns:zns", NsAPI)
	env.CreateAttr("xmlns:ons", NsObject)
	env.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	header := env.CreateElement("soapenv:Header")
	body := env.CreateElement("soapenv:Body")
	op := body.CreateElement("zns:" + operation)

	return &Request{doc: doc, header: header, op: op}
}

// SetSessionHeader attaches the SessionHeader carrying the session key.
// Calling it again replaces the previous header.
func (r *Request) SetSessionHeader(key string) {
	for _, el := range r.header.SelectElements("zns:SessionHeader") {
		r.header.RemoveChild(el)
	}
	sh := r.header.CreateElement("zns:SessionHeader")
	sh.CreateElement("zns:Session").SetText(key)
}

// AddField appends a child element to the operation body. Fields serialize
// in the order they are added.
func (r *Request) AddField(name, value string) {
	r.op.CreateElement("zns:" + name).SetText(value)
}

// Operation exposes the operation element for literal body construction.
// Callers that need payload shapes the flat field form cannot express
// (nested objects, attribute-qualified types) build directly onto it.
func (r *Request) Operation() *etree.Element {
	return r.op
}

// ClearBody removes any children already added to the operation element,
// so a literal body builder fully replaces declarative fields.
func (r *Request) ClearBody() {
	for _, child := range r.op.ChildElements() {
		r.op.RemoveChild(child)
	}
}

// Bytes serializes the envelope.
func (r *Request) Bytes() ([]byte, error) {
	return r.doc.WriteToBytes()
}
