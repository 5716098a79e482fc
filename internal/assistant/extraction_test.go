package assistant

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractTextBinaryExtension(t *testing.T) {
	// 非类文本扩展名直接拒绝，不尝试解码
	_, err := ExtractText([]byte{0x89, 0x50, 0x4e, 0x47}, "scan.png", "image/png")
	if !errors.Is(err, ErrBinaryFormat) {
		t.Errorf("err = %v, 期望 ErrBinaryFormat", err)
	}

	_, err = ExtractText([]byte("hello"), "report.pdf", "application/pdf")
	if !errors.Is(err, ErrBinaryFormat) {
		t.Errorf("err = %v, 期望 ErrBinaryFormat", err)
	}
}

func TestExtractTextAllowedExtensions(t *testing.T) {
	for _, name := range []string{"a.txt", "a.text", "a.log", "a.csv", "a.json", "a.xml", "a.html", "a.md", "A.TXT"} {
		text, err := ExtractText([]byte("  Glucose: 95 mg/dL  "), name, "")
		if err != nil {
			t.Errorf("ExtractText(%q) 返回错误: %v", name, err)
			continue
		}
		if text != "Glucose: 95 mg/dL" {
			t.Errorf("ExtractText(%q) = %q, 应返回去除首尾空白的文本", name, text)
		}
	}
}

func TestExtractTextContentTypeFallback(t *testing.T) {
	// 扩展名未命中时按 Content-Type 前缀放行
	tests := []string{"text/plain", "text/csv; charset=utf-8", "application/json", "application/xml"}
	for _, ct := range tests {
		if _, err := ExtractText([]byte("result: ok"), "upload.bin", ct); err != nil {
			t.Errorf("ExtractText(content-type %q) 返回错误: %v", ct, err)
		}
	}
}

func TestExtractTextControlCharacters(t *testing.T) {
	// 控制字符超过 10% 判定为二进制内容
	data := make([]byte, 100)
	for i := range data {
		if i%2 == 0 {
			data[i] = 0x01
		} else {
			data[i] = 'a'
		}
	}
	_, err := ExtractText(data, "garbage.txt", "")
	if !errors.Is(err, ErrInvalidText) {
		t.Errorf("err = %v, 期望 ErrInvalidText", err)
	}
}

func TestExtractTextAllowsWhitespaceControls(t *testing.T) {
	// tab/LF/CR 不计入控制字符
	text := "line one\tvalue\r\nline two\n"
	got, err := ExtractText([]byte(text), "report.txt", "")
	if err != nil {
		t.Fatalf("含常规空白字符的文本不应被拒绝: %v", err)
	}
	if got != strings.TrimSpace(text) {
		t.Errorf("got = %q", got)
	}
}

func TestExtractTextEmptyFile(t *testing.T) {
	_, err := ExtractText(nil, "empty.txt", "")
	if !errors.Is(err, ErrInvalidText) {
		t.Errorf("err = %v, 期望 ErrInvalidText", err)
	}
}

func TestExtractTextInvalidUTF8Replaced(t *testing.T) {
	// 非法 UTF-8 字节以替换符宽松解码，不报错
	data := append([]byte("Glucose: 95 "), 0xff, 0xfe)
	text, err := ExtractText(data, "labs.txt", "")
	if err != nil {
		t.Fatalf("宽松解码不应返回错误: %v", err)
	}
	if !strings.Contains(text, "Glucose: 95") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(text, "�") {
		t.Errorf("非法字节应被替换为 U+FFFD: %q", text)
	}
}
