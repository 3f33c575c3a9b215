package services

import (
  "bytes"
  "fmt"
  "io"
  "strings"

  pdf "github.com/ledongthuc/pdf"
)

// ExtractDocumentText pulls plain text out of an uploaded document. The byte
// content wins over the declared mime type: a file claiming application/pdf
// without a %PDF header is rejected rather than blindly parsed.
func ExtractDocumentText(mimeType string, data []byte) (string, error) {
  mt := strings.ToLower(strings.TrimSpace(mimeType))

  if len(data) == 0 {
    return "", fmt.Errorf("empty file: mime=%s", mimeType)
  }

  if isPDF(data) {
    return extractPDF(data)
  }
  if mt == "application/pdf" {
    return "", fmt.Errorf("file claims pdf but missing %%PDF header, head=%s", firstBytesHex(data, 16))
  }
  if isProbablyText(data) {
    return collapseWhitespace(string(data)), nil
  }
  return "", fmt.Errorf("unsupported document content: mime=%s head=%s", mimeType, firstBytesHex(data, 16))
}

func isPDF(b []byte) bool {
  return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isProbablyText(b []byte) bool {
  // Mostly printable bytes and no NULs.
  sample := b[:minInt(len(b), 4096)]
  good := 0
  for _, c := range sample {
    if c == 0x00 {
      return false
    }
    if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
      good++
    }
  }
  return float64(good)/float64(len(sample)) > 0.9
}

func firstBytesHex(b []byte, n int) string {
  n = minInt(len(b), n)
  const hexdigits = "0123456789abcdef"
  out := make([]byte, 0, n*2)
  for i := 0; i < n; i++ {
    out = append(out, hexdigits[b[i]>>4], hexdigits[b[i]&0x0f])
  }
  return string(out)
}

func minInt(a, b int) int {
  if a < b {
    return a
  }
  return b
}

func extractPDF(data []byte) (string, error) {
  r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
  if err != nil {
    return "", fmt.Errorf("pdf reader: %w", err)
  }
  plain, err := r.GetPlainText()
  if err != nil {
    return "", fmt.Errorf("pdf plaintext: %w", err)
  }
  b, err := io.ReadAll(plain)
  if err != nil {
    return "", fmt.Errorf("pdf read: %w", err)
  }
  return collapseWhitespace(string(b)), nil
}

func collapseWhitespace(s string) string {
  s = strings.ReplaceAll(s, " ", " ")
  return strings.Join(strings.Fields(s), " ")
}
