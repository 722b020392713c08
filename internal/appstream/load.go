package appstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/klauspost/compress/gzip"
	"github.com/quantmind-br/appcenter/internal/core"
	"github.com/ulikunitz/xz"
)

// MaxDecompressedSize caps the size of an inflated metadata document
const MaxDecompressedSize = 64 * 1024 * 1024

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Load decompresses, parses and converts a compressed AppStream blob.
// Failures match core.ErrDecompressionFailed, core.ErrMetadataParseFailed or
// core.ErrMetadataConversionFailed depending on the stage that failed.
func Load(blob []byte) (*Collection, error) {
	data, err := Decompress(blob)
	if err != nil {
		return nil, err
	}

	root, err := ParseTree(data)
	if err != nil {
		return nil, err
	}

	return FromTree(root)
}

// Decompress inflates a gzip framed blob. Blobs starting with the xz magic
// are decoded as xz instead.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty blob", core.ErrDecompressionFailed)
	}

	var (
		r      io.Reader
		format string
	)
	if bytes.HasPrefix(blob, xzMagic) {
		format = "xz"
		xr, err := xz.NewReader(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrDecompressionFailed, format, err)
		}
		r = xr
	} else {
		format = "gzip"
		gr, err := gzip.NewReader(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrDecompressionFailed, format, err)
		}
		defer gr.Close()
		r = gr
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDecompressionFailed, format, err)
	}
	if len(data) > MaxDecompressedSize {
		return nil, fmt.Errorf("%w: %s: document exceeds %d bytes", core.ErrDecompressionFailed, format, MaxDecompressedSize)
	}

	return data, nil
}

// ParseTree parses raw markup into a generic tree and returns its root element
func ParseTree(data []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMetadataParseFailed, err)
	}

	root := rootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMetadataParseFailed, errNoRoot)
	}

	return root, nil
}

var errNoRoot = errors.New("document has no root element")

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}
