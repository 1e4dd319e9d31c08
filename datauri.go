package notefavicon

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errNotDataURI = errors.New("not a base64 data uri")

// EncodeDataURI returns b as a data:<mimeType>;base64,<payload> string.
func EncodeDataURI(b []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = defaultMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURI is the inverse of EncodeDataURI.
func DecodeDataURI(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", errNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errNotDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", errNotDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}
