// Package catalog assigns sequential string ids to user-facing labels and
// writes them out as a gettext catalog.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BaseID is the first id handed out after a Reset.
const BaseID = 30000

// Layout of the catalog below an add-on directory.
const (
	ResourcesDir = "resources"
	LanguagesDir = "languages"
	EnglishDir   = "english"
	StringsFile  = "strings.po"
)

const header = `# XBMC Media Center language file
# Addon Name: @name@
# Addon id: @id@
# Addon Provider: @authors@
msgid ""
msgstr ""
"Project-Id-Version: Libretro Clients\n"
"Report-Msgid-Bugs-To: alanwww1@xbmc.org\n"
"POT-Creation-Date: 2014-05-30 17:00+8\n"
"PO-Revision-Date: 2014-05-30 17:00+8\n"
"Last-Translator: XBMC Translation Team\n"
"Language-Team: English (http://www.transifex.com/projects/p/xbmc-addons/language/en/)\n"
"MIME-Version: 1.0\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Content-Transfer-Encoding: 8bit\n"
"Language: en\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"
`

// Entry is one interned label.
type Entry struct {
	ID   uint32
	Text string
}

// Catalog is the string table for one core's extraction. It is not safe
// for concurrent use; a scan drives one core at a time and must Reset the
// catalog before moving on to the next one.
type Catalog struct {
	strings []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Intern appends text and returns its id. Interning the same text twice
// yields two ids.
func (c *Catalog) Intern(text string) uint32 {
	id := BaseID + uint32(len(c.strings))
	c.strings = append(c.strings, text)
	return id
}

// Reset forgets every entry so the next Intern reissues BaseID.
func (c *Catalog) Reset() {
	c.strings = c.strings[:0]
}

// Len returns the number of interned entries.
func (c *Catalog) Len() int {
	return len(c.strings)
}

// Entries returns a copy of the interned entries in id order.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.strings))
	for i, text := range c.strings {
		entries[i] = Entry{ID: BaseID + uint32(i), Text: text}
	}
	return entries
}

// Write renders the header followed by one record per entry.
func (c *Catalog) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, header); err != nil {
		return err
	}
	for _, e := range c.Entries() {
		fmt.Fprintf(bw, "\nmsgctxt \"#%d\"\nmsgid \"%s\"\nmsgstr \"\"\n", e.ID, escape(e.Text))
	}
	return bw.Flush()
}

// Path returns where PrintLanguage writes the catalog for addonDir.
func Path(addonDir string) string {
	return filepath.Join(addonDir, ResourcesDir, LanguagesDir, EnglishDir, StringsFile)
}

// PrintLanguage writes the catalog below addonDir, creating directories as
// needed, and returns the path of the written file.
func (c *Catalog) PrintLanguage(addonDir string) (string, error) {
	path := Path(addonDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create language directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", StringsFile, err)
	}
	if err := c.Write(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", StringsFile, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", StringsFile, err)
	}
	return path, nil
}

var poEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

func escape(s string) string {
	return poEscaper.Replace(s)
}
