// Package qr implements the transport codec used to move scouting data
// between devices as QR payloads. The wire form is
//
//	frmhnd:<type code>:<schema hash>:<device id>:<payload>
//
// where the payload is the DEFLATE-compressed, base64-encoded JSON of the
// transported value. Optical scanning is out of scope; this package deals
// in the encoded strings only.
package qr

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prefix tags every payload produced by this application.
const Prefix = "frmhnd"

// Type identifies what a QR payload carries.
type Type string

const (
	TypeMatch    Type = "match"
	TypeSchema   Type = "schema"
	TypeTheme    Type = "theme"
	TypeSettings Type = "settings"
)

var typeCodes = map[Type]string{
	TypeMatch:    "m",
	TypeSchema:   "s",
	TypeTheme:    "t",
	TypeSettings: "e",
}

var codeTypes = map[string]Type{
	"m": TypeMatch,
	"s": TypeSchema,
	"t": TypeTheme,
	"e": TypeSettings,
}

// Valid reports whether t is a known payload type.
func (t Type) Valid() bool {
	_, ok := typeCodes[t]
	return ok
}

var (
	ErrBadPrefix      = errors.New("qr: invalid prefix")
	ErrBadShape       = errors.New("qr: malformed payload string")
	ErrUnknownType    = errors.New("qr: unknown type code")
	ErrMissingPayload = errors.New("qr: payload missing")
)

// Decoded is a parsed and decompressed QR payload. Data holds the raw JSON
// of the transported value; callers unmarshal it per Type.
type Decoded struct {
	Type       Type
	SchemaHash string
	DeviceID   int
	Data       json.RawMessage
}

// Encode builds the wire string for a payload. The payload is marshalled
// to JSON, compressed and base64 encoded.
func Encode(t Type, schemaHash string, deviceID int, payload any) (string, error) {
	code, ok := typeCodes[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("qr: marshal payload: %w", err)
	}
	compressed, err := compress(body)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{
		Prefix, code, schemaHash, strconv.Itoa(deviceID), compressed,
	}, ":"), nil
}

// Decode parses and decompresses a wire string. A device id that fails to
// parse decodes as 0 rather than failing the whole payload.
func Decode(s string) (*Decoded, error) {
	parts := strings.SplitN(s, ":", 5)
	if len(parts) != 5 {
		return nil, ErrBadShape
	}
	if parts[0] != Prefix {
		return nil, fmt.Errorf("%w: %q", ErrBadPrefix, parts[0])
	}
	t, ok := codeTypes[parts[1]]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, parts[1])
	}
	if parts[4] == "" {
		return nil, ErrMissingPayload
	}

	deviceID, err := strconv.Atoi(parts[3])
	if err != nil {
		deviceID = 0
	}
	body, err := decompress(parts[4])
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("qr: payload is not valid JSON")
	}
	return &Decoded{
		Type:       t,
		SchemaHash: parts[2],
		DeviceID:   deviceID,
		Data:       json.RawMessage(body),
	}, nil
}

// Validate reports whether s has the shape of a payload this application
// produced, without decompressing it.
func Validate(s string) bool {
	parts := strings.SplitN(s, ":", 5)
	if len(parts) != 5 {
		return false
	}
	if parts[0] != Prefix || parts[2] == "" || parts[4] == "" {
		return false
	}
	_, ok := codeTypes[parts[1]]
	return ok
}

// PayloadType classifies a wire string without decompressing it, returning
// false for anything Validate rejects.
func PayloadType(s string) (Type, bool) {
	if !Validate(s) {
		return "", false
	}
	parts := strings.SplitN(s, ":", 5)
	return codeTypes[parts[1]], true
}

func compress(body []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("qr: init compressor: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return "", fmt.Errorf("qr: compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("qr: compress payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decompress(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("qr: decode payload base64: %w", err)
	}
	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("qr: decompress payload: %w", err)
	}
	return body, nil
}
