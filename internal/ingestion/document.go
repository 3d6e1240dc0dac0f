package ingestion

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported résumé MIME types.
const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxDocumentBytes bounds an uploaded résumé.
const MaxDocumentBytes = 5 << 20

var (
	// ErrUnsupportedType is returned for MIME types we cannot read.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrInvalidDataURI is returned when a data URI cannot be decoded.
	ErrInvalidDataURI = errors.New("invalid data URI")
	// ErrEmptyDocument is returned when no text could be extracted.
	ErrEmptyDocument = errors.New("document contains no text")
	// ErrDocumentTooLarge is returned when the payload exceeds MaxDocumentBytes.
	ErrDocumentTooLarge = errors.New("document too large")
)

// Document is cleaned text plus where it came from.
type Document struct {
	Source    string `json:"source,omitempty"`
	MimeType  string `json:"mimeType"`
	Text      string `json:"text"`
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
}

func newDocument(source, mime, text string) *Document {
	sum := sha256.Sum256([]byte(text))
	return &Document{
		Source:    source,
		MimeType:  mime,
		Text:      text,
		Hash:      hex.EncodeToString(sum[:]),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ExtractText returns the cleaned text of a document with the given MIME type.
func ExtractText(mime string, data []byte) (string, error) {
	if len(data) > MaxDocumentBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(data))
	}

	var raw string
	var err error
	switch normalizeMime(mime) {
	case MimeText:
		raw = string(data)
	case MimePDF:
		raw, err = extractPDFText(data)
	case MimeDOCX:
		raw, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func normalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return stripXMLTags(doc.Editable().GetContent()), nil
}

// stripXMLTags turns WordprocessingML into text, one paragraph per line.
func stripXMLTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return unescapeXML(sb.String())
}

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// DecodeDataURI splits a data URI into its MIME type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrInvalidDataURI)
	}

	params := strings.Split(header, ";")
	mime := params[0]
	if mime == "" {
		mime = MimeText
	}
	isBase64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}

	if isBase64 {
		if base64.StdEncoding.DecodedLen(len(payload)) > MaxDocumentBytes {
			return "", nil, ErrDocumentTooLarge
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return mime, data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, []byte(text), nil
}

// FromDataURI extracts a document from a data URI such as a browser file upload.
func FromDataURI(uri string) (*Document, error) {
	mime, data, err := DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(mime, data)
	if err != nil {
		return nil, err
	}
	return newDocument("", normalizeMime(mime), text), nil
}

// FromFile reads a résumé or posting from disk, picking the parser by extension.
func FromFile(path string) (*Document, error) {
	mime, err := MimeFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	text, err := ExtractText(mime, data)
	if err != nil {
		return nil, err
	}
	return newDocument(path, mime, text), nil
}

// MimeFromPath maps a file extension to a supported MIME type.
func MimeFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", "":
		return MimeText, nil
	case ".pdf":
		return MimePDF, nil
	case ".docx":
		return MimeDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
}
