// Package inspect summarizes an app's HTML for the JSON API: title,
// headings, element counts, the detected charset and a plain text preview.
// Non UTF-8 content is detected with chardet and transcoded before parsing.
package inspect
