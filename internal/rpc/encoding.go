package rpc

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// Encoding is the payload encoding hint supplied by the caller.
type Encoding string

const (
	// EncodingAuto detects whether the buffer is already base64 text.
	EncodingAuto Encoding = "auto"

	// EncodingBase64 declares the buffer to be base64 text already.
	EncodingBase64 Encoding = "base64"

	// EncodingBase58 encodes the raw bytes as base58 on the wire.
	EncodingBase58 Encoding = "base58"

	// EncodingRaw declares the buffer to be raw transaction bytes.
	EncodingRaw Encoding = "raw"
)

// ParseEncoding validates a user-supplied encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingAuto, EncodingBase64, EncodingBase58, EncodingRaw:
		return Encoding(s), nil
	case "":
		return EncodingAuto, nil
	}
	return "", fmt.Errorf("unsupported encoding %q (want auto, base64, base58 or raw)", s)
}

// encodePayload resolves the hint against the buffer and returns the wire
// text plus the wire encoding label sent to the endpoint. Decoding the wire
// text always reproduces the transaction bytes the buffer represents.
func encodePayload(payload []byte, enc Encoding) (text, wire string, err error) {
	switch enc {
	case EncodingAuto:
		if trimmed, ok := looksBase64(payload); ok {
			return string(trimmed), "base64", nil
		}
		return base64.StdEncoding.EncodeToString(payload), "base64", nil
	case EncodingBase64:
		trimmed, ok := looksBase64(payload)
		if !ok {
			return "", "", fmt.Errorf("payload declared base64 but is not valid base64 text")
		}
		return string(trimmed), "base64", nil
	case EncodingBase58:
		return base58.Encode(payload), "base58", nil
	case EncodingRaw:
		return base64.StdEncoding.EncodeToString(payload), "base64", nil
	}
	return "", "", fmt.Errorf("unsupported encoding %q", enc)
}

// looksBase64 reports whether the buffer is valid base64 text, tolerating
// surrounding whitespace as produced by most tooling. Returns the trimmed
// text for forwarding unchanged.
func looksBase64(data []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || len(trimmed)%4 != 0 {
		return nil, false
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(string(trimmed)); err != nil {
		return nil, false
	}
	return trimmed, true
}
