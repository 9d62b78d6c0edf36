package drivetree

import (
	"path"
	"strings"
)

// ExportFormat associates a local file extension with the mime type a proprietary document is exported to.
type ExportFormat struct {
	Extension string
	MimeType  string
}

// ExportFormats lists the supported export formats in the order they are offered.
var ExportFormats = []ExportFormat{
	{Extension: ".html", MimeType: "text/html"},
	{Extension: ".txt", MimeType: "text/plain"},
	{Extension: ".rtf", MimeType: "application/rtf"},
	{Extension: ".odt", MimeType: "application/vnd.oasis.opendocument.text"},
	{Extension: ".docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	{Extension: ".epub", MimeType: "application/epub+zip"},
	{Extension: ".pdf", MimeType: "application/pdf"},
	{Extension: ".xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	{Extension: ".ods", MimeType: "application/x-vnd.oasis.opendocument.spreadsheet"},
	{Extension: ".tsv", MimeType: "text/tab-separated-values"},
	{Extension: ".csv", MimeType: "text/csv"},
	{Extension: ".jpg", MimeType: "image/jpeg"},
	{Extension: ".png", MimeType: "image/png"},
	{Extension: ".svg", MimeType: "image/svg+xml"},
	{Extension: ".pptx", MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
	{Extension: ".odp", MimeType: "application/vnd.oasis.opendocument.presentation"},
	{Extension: ".json", MimeType: "application/vnd.google-apps.script+json"},
	{Extension: ".md", MimeType: "text/markdown"},
	{Extension: ".zip", MimeType: "application/zip"},
}

// LookupExportFormat finds the format for an extension, with or without the leading dot.
func LookupExportFormat(ext string) (ExportFormat, bool) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, f := range ExportFormats {
		if strings.EqualFold(f.Extension, ext) {
			return f, true
		}
	}
	return ExportFormat{}, false
}

// offeredExportFormats returns the supported formats that n can be exported to, in table order.
func offeredExportFormats(n Node) []ExportFormat {
	var out []ExportFormat
	for _, f := range ExportFormats {
		if n.OffersExport(f.MimeType) {
			out = append(out, f)
		}
	}
	return out
}

// exportFormatFor picks the offered format named by the extension of localName, if any.
func exportFormatFor(n Node, localName string) (ExportFormat, bool) {
	f, ok := LookupExportFormat(path.Ext(localName))
	if !ok || !n.OffersExport(f.MimeType) {
		return ExportFormat{}, false
	}
	return f, true
}
