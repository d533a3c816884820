/*
Package gozuora is a Go client for the Zuora billing SOAP API.

# Overview

The library wraps Zuora's session-based SOAP interface: it performs the
login handshake, attaches the resulting session token as a persistent
SessionHeader on every call, and dispatches any operation the bundled WSDL
binds by name. It does not model the Zuora business-object surface; callers
assemble operation payloads and decode result types themselves.

# Package Structure

	github.com/rayjohnson/zuora/pkg/zuora     - the client: config, session, dispatch
	github.com/rayjohnson/zuora/pkg/soap      - SOAP 1.1 wire types and request builder
	github.com/rayjohnson/zuora/pkg/wsdl      - WSDL definitions parser
	github.com/rayjohnson/zuora/pkg/transport - HTTPS transport with redacted logging

# Quick Start

	client := zuora.New(zuora.Config{
		Username: os.Getenv("ZUORA_USERNAME"),
		Password: os.Getenv("ZUORA_PASSWORD"),
		Sandbox:  true,
	})

	resp, err := client.Call(ctx, "query", []zuora.Field{
		{Name: "queryString", Value: "select Id, Name from Account"},
	})
	if err != nil {
		var fault *zuora.Fault
		if errors.As(err, &fault) {
			// transport failure or SOAP fault
		}
	}

The first Call logs in automatically; Authenticate can also be invoked
explicitly. Switching environments with client.Sandbox or client.Production
discards the cached transport so no call ever targets a stale endpoint.
*/
package gozuora
