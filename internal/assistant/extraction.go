package assistant

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// 文本提取失败的三类原因。
var (
	ErrBinaryFormat     = errors.New("binary-format")
	ErrInvalidText      = errors.New("invalid-text")
	ErrExtractionFailed = errors.New("extraction-failed")
)

// 纯文本格式允许清单。不在清单内的文件直接判为二进制，不尝试解码。
var textExtensions = []string{".txt", ".text", ".log", ".csv", ".json", ".xml", ".html", ".md"}

var textContentTypes = []string{"text/", "application/json", "application/xml"}

// ExtractText 尝试从文件字节中提取纯文本。
// 仅支持类文本格式；失败返回 ErrBinaryFormat、ErrInvalidText 或
// ErrExtractionFailed 三者之一，永不 panic。
func ExtractText(data []byte, filename, contentType string) (string, error) {
	if !isLikelyTextFile(filename, contentType) {
		return "", ErrBinaryFormat
	}

	text, err := decodeUTF8(data)
	if err != nil {
		return "", ErrExtractionFailed
	}

	if !isValidText(text) {
		return "", ErrInvalidText
	}

	return strings.TrimSpace(text), nil
}

// isLikelyTextFile 按扩展名或 Content-Type 前缀判断是否为类文本格式。
func isLikelyTextFile(filename, contentType string) bool {
	lowerFilename := strings.ToLower(filename)
	for _, ext := range textExtensions {
		if strings.HasSuffix(lowerFilename, ext) {
			return true
		}
	}

	if contentType != "" {
		lowerContentType := strings.ToLower(contentType)
		for _, prefix := range textContentTypes {
			if strings.HasPrefix(lowerContentType, prefix) {
				return true
			}
		}
	}

	return false
}

// decodeUTF8 以宽松模式解码，非法字节序列替换为 U+FFFD。
func decodeUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteRune(r)
		}
		data = data[size:]
	}
	return b.String(), nil
}

// isValidText 抽样前 1000 个字符，tab/LF/CR 之外的控制字符超过 10%
// 即判定为被误分类的二进制内容。
func isValidText(text string) bool {
	if len(text) == 0 {
		return false
	}

	runes := []rune(text)
	sampleSize := len(runes)
	if sampleSize > 1000 {
		sampleSize = 1000
	}

	controlCharCount := 0
	for i := 0; i < sampleSize; i++ {
		code := runes[i]
		if code < 32 && code != 9 && code != 10 && code != 13 {
			controlCharCount++
		}
	}

	return float64(controlCharCount)/float64(sampleSize) < 0.1
}
