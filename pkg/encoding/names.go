// Package encoding converts archive file names between EUC-KR and UTF-8.
//
// GRF tables store names in EUC-KR. Lookups use the UTF-8 form, lowercased
// with forward slashes.
package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeName converts an EUC-KR encoded name to UTF-8.
// Returns the input unchanged if it is plain ASCII or fails to decode.
func DecodeName(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeName converts a UTF-8 name to EUC-KR.
// Returns the input bytes if a character has no EUC-KR form.
func EncodeName(name string) []byte {
	if isASCII([]byte(name)) {
		return []byte(name)
	}
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(name))
	if err != nil {
		return []byte(name)
	}
	return result
}

// NormalizePath turns a path into its lookup key: forward slashes, lowercase.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
