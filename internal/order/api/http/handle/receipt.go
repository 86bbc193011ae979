package handle

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	receiptPrefix    = "receipt-proof-of-payment-"
	receiptPublicDir = "/UploadedReceipts"
)

// ReceiptStore writes uploaded payment receipts to a local directory.
type ReceiptStore struct {
	dir string
}

func NewReceiptStore(dir string) *ReceiptStore {
	return &ReceiptStore{dir: dir}
}

// Stage stores the upload under a fresh name and returns its public path and
// a function that removes the file again.
func (rs *ReceiptStore) Stage(file multipart.File, header *multipart.FileHeader) (string, func() error, error) {
	if err := os.MkdirAll(rs.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create receipts dir: %w", err)
	}

	name := receiptPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	full := filepath.Join(rs.dir, name)

	dst, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("create receipt file: %w", err)
	}
	remove := func() error { return os.Remove(full) }

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		_ = remove()
		return "", nil, fmt.Errorf("write receipt file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = remove()
		return "", nil, fmt.Errorf("close receipt file: %w", err)
	}

	return path.Join(receiptPublicDir, name), remove, nil
}
