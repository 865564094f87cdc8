package imaging

import (
	"bytes"
	"strings"
)

// SniffFormat detects the image format from magic bytes. It returns one
// of "jpeg", "png", "webp", "bmp", "tiff", or "" when the prefix matches
// no supported format. Extension and declared content type are ignored.
func SniffFormat(data []byte) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case len(data) >= 2 && bytes.Equal(data[:2], []byte("BM")):
		return "bmp"
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{'I', 'I', 0x2A, 0x00}) ||
		bytes.Equal(data[:4], []byte{'M', 'M', 0x00, 0x2A})):
		return "tiff"
	}
	return ""
}

// formatFromContentType normalizes a declared MIME type to the format
// names used by SniffFormat. Unknown or empty types map to "".
func formatFromContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/bmp", "image/x-ms-bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	}
	return ""
}

// codeMarkers are byte sequences that indicate embedded scripts or
// executables inside an image payload. Matching is case-insensitive.
// Markers shorter than four bytes are deliberately absent: they collide
// with legitimate compressed pixel data.
var codeMarkers = []string{
	"<?php",
	"<script",
	"#!/bin/",
	"#!/usr/bin/",
	"eval(",
	"exec(",
	"system(",
	"passthru(",
	"shell_exec(",
	"base64_decode(",
	"\x7fELF",
	"powershell",
}

// scanEmbeddedCode scans the payload for known code markers and returns
// the first marker found, or "" when the payload is clean.
func scanEmbeddedCode(data []byte) string {
	lower := bytes.ToLower(data)
	for _, marker := range codeMarkers {
		if bytes.Contains(lower, []byte(strings.ToLower(marker))) {
			return marker
		}
	}
	return ""
}
