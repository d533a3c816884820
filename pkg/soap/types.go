// Package soap implements the SOAP 1.1 wire format used by the Zuora API:
// envelope construction, response decoding, and fault extraction.
package soap

import (
	"encoding/xml"
	"fmt"
)

// Namespace constants for the Zuora SOAP API
const (
	NsSOAPEnv = "http://schemas.xmlsoap.org/soap/envelope/"
	NsAPI     = "http://api.zuora.com/"
	NsObject  = "http://object.api.zuora.com/"
	NsFault   = "http://fault.api.zuora.com/"
)

// ResponseEnvelope is a decoded SOAP 1.1 response envelope.
type ResponseEnvelope struct {
	XMLName xml.Name     `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Header  *Header      `xml:"Header"`
	Body    ResponseBody `xml:"Body"`
}

// Header carries response SOAP headers. Zuora echoes no headers of interest,
// but a present header must not break decoding.
type Header struct {
	Content []byte `xml:",innerxml"`
}

// ResponseBody holds either a SOAP fault or the raw operation response.
// Content retains the body's inner XML so callers can decode
// operation-specific result types themselves.
type ResponseBody struct {
	Fault   *Fault `xml:"Fault"`
	Content []byte `xml:",innerxml"`
}

// Fault is the SOAP 1.1 <soap:Fault> element.
type Fault struct {
	XMLName xml.Name `xml:"Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
	Detail  struct {
		Content []byte `xml:",innerxml"`
	} `xml:"detail"`
}

// SessionHeader is the persistent header every authenticated call carries.
type SessionHeader struct {
	XMLName xml.Name `xml:"http://api.zuora.com/ SessionHeader"`
	Session string   `xml:"Session"`
}

// LoginResult is the payload of a successful loginResponse.
type LoginResult struct {
	Session   string `xml:"Session"`
	ServerURL string `xml:"ServerUrl"`
}

type loginResponse struct {
	XMLName xml.Name    `xml:"http://api.zuora.com/ loginResponse"`
	Result  LoginResult `xml:"result"`
}

// DecodeEnvelope unmarshals a SOAP response. A fault in the body is not an
// error at this layer; it is returned in ResponseBody.Fault for the caller
// to translate.
func DecodeEnvelope(data []byte) (*ResponseEnvelope, error) {
	var env ResponseEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	return &env, nil
}

// DecodeLoginResult extracts the login result from a response body's inner
// XML.
func DecodeLoginResult(body []byte) (*LoginResult, error) {
	var resp loginResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding login result: %w", err)
	}
	if resp.Result.Session == "" {
		return nil, fmt.Errorf("login response carried no session key")
	}
	return &resp.Result, nil
}
