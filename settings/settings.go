// Package settings turns the configuration variables a core declares into
// an add-on settings descriptor.
package settings

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joncooperworks/coreextract/catalog"
)

// CategoryTitle labels the single category every descriptor lands in.
const CategoryTitle = "Settings"

// SettingsFile is written to <addonDir>/resources.
const SettingsFile = "settings.xml"

// Declaration is a raw variable as a core declares it: a key plus
// "Display Name; value1|value2|...".
type Declaration struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Descriptor is a parsed declaration.
type Descriptor struct {
	ID     string
	Name   string
	Values []string
}

// Parse splits a declaration into a descriptor. It reports false when the
// value has no ';' or no values follow it; such declarations are dropped.
func Parse(d Declaration) (Descriptor, bool) {
	name, rest, found := strings.Cut(d.Value, ";")
	if !found {
		return Descriptor{}, false
	}

	var values []string
	for rest != "" {
		var value string
		value, rest, _ = strings.Cut(rest, "|")
		values = append(values, Trim(value))
	}
	if len(values) == 0 {
		return Descriptor{}, false
	}

	return Descriptor{ID: d.Key, Name: Trim(name), Values: values}, true
}

// Trim removes leading and trailing spaces. Tabs and newlines are kept.
func Trim(s string) string {
	return strings.Trim(s, " ")
}

// Extractor holds the descriptors parsed from one SET_VARIABLES call.
type Extractor struct {
	addonDir    string
	catalog     *catalog.Catalog
	descriptors []Descriptor
}

// NewExtractor parses decls in order. Labels are interned into cat when
// the settings file is printed.
func NewExtractor(addonDir string, decls []Declaration, cat *catalog.Catalog) *Extractor {
	e := &Extractor{addonDir: addonDir, catalog: cat}
	for _, d := range decls {
		if desc, ok := Parse(d); ok {
			e.descriptors = append(e.descriptors, desc)
		}
	}
	return e
}

// Descriptors returns the retained descriptors in declaration order.
func (e *Extractor) Descriptors() []Descriptor {
	return e.descriptors
}

// Path returns where PrintSettings writes for addonDir.
func Path(addonDir string) string {
	return filepath.Join(addonDir, catalog.ResourcesDir, SettingsFile)
}

// Write renders the settings document. The category title and each
// display name consume one catalog id; values are written verbatim.
func (e *Extractor) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, `<?xml version="1.0" encoding="utf-8" standalone="yes"?>`)
	fmt.Fprintln(bw, "<settings>")
	fmt.Fprintf(bw, "\t<category label=\"%d\">\n", e.catalog.Intern(CategoryTitle))
	for _, d := range e.descriptors {
		fmt.Fprintf(bw, "\t\t<setting label=\"%d\" type=\"labelenum\" id=\"%s\" values=\"%s\"/>\n",
			e.catalog.Intern(d.Name), attr(d.ID), attr(strings.Join(d.Values, "|")))
	}
	fmt.Fprintln(bw, "\t</category>")
	fmt.Fprintln(bw, "</settings>")
	fmt.Fprintln(bw)
	return bw.Flush()
}

// PrintSettings writes resources/settings.xml below the add-on directory
// and returns its path.
func (e *Extractor) PrintSettings() (string, error) {
	path := Path(e.addonDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create resources directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", SettingsFile, err)
	}
	if err := e.Write(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", SettingsFile, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", SettingsFile, err)
	}
	return path, nil
}

// PrintLanguage flushes every label interned since the catalog's last
// reset. The caller resets the catalog before the next core.
func (e *Extractor) PrintLanguage() (string, error) {
	return e.catalog.PrintLanguage(e.addonDir)
}

func attr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
