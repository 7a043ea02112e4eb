package media

import (
	"bytes"
	"fmt"
	"io"
)

const (
	// MaxAssetBytes caps an uploaded avatar image when the caller sets no limit.
	MaxAssetBytes int64 = 10 << 20
	// MaxVariantEdge is the largest width or height a registered variant may declare.
	MaxVariantEdge = 2048
)

// readVariant reads a variant payload of at most maxBytes and checks that it
// decodes to the declared box. Payloads whose dimensions cannot be decoded
// are accepted as declared.
func readVariant(reader io.Reader, maxBytes int64, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("variant dimensions must be positive")
	}
	if width > MaxVariantEdge || height > MaxVariantEdge {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrVariantMismatch, width, height, MaxVariantEdge)
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if maxBytes <= 0 {
		maxBytes = MaxAssetBytes
	}
	data, err := io.ReadAll(&io.LimitedReader{R: reader, N: maxBytes + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrAssetTooLarge, maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("variant payload is empty")
	}
	if w, h := imageDimensions(bytes.NewReader(data)); w > 0 && (w != width || h != height) {
		return nil, fmt.Errorf("%w: declared %dx%d, decoded %dx%d", ErrVariantMismatch, width, height, w, h)
	}
	return data, nil
}
