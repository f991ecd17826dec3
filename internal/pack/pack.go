// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pack writes an EmitBundle into a zip archive. The archive is a
// pure function of the bundle: entries are written in a fixed order with a
// fixed timestamp, so the same bundle always yields the same bytes.
package pack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pdiddy/design-compiler/pkg/types"
)

// epoch is the modification time stamped on every entry. It is the earliest
// time the zip format can represent.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Directory and file names inside the archive.
const (
	ComponentsDir  = "components"
	AssetsDir      = "assets"
	StyleSheetName = "styles.css"
)

// File is one archive entry.
type File struct {
	Name string
	Data []byte
}

// Files lists the archive entries in write order: the entry file, the
// component files in declaration order, the assets in manifest order, and
// the stylesheet when the bundle has one.
func Files(b *types.EmitBundle) []File {
	files := []File{{Name: b.EntryName, Data: []byte(b.EntryMarkup)}}
	for _, c := range b.ComponentFiles {
		files = append(files, File{Name: path.Join(ComponentsDir, c.Name+".jsx"), Data: []byte(c.Source)})
	}
	for _, a := range b.Assets {
		files = append(files, File{Name: path.Join(AssetsDir, a.SuggestedName), Data: a.Data})
	}
	if b.StyleSheet != nil {
		files = append(files, File{Name: StyleSheetName, Data: []byte(*b.StyleSheet)})
	}
	return files
}

// Pack returns the zip archive for b.
func Pack(b *types.EmitBundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the zip archive for b to w.
func Write(w io.Writer, b *types.EmitBundle) error {
	if b == nil || b.EntryName == "" {
		return fmt.Errorf("pack: bundle has no entry file")
	}
	zw := zip.NewWriter(w)
	seen := make(map[string]bool)
	for _, f := range Files(b) {
		if seen[f.Name] {
			return fmt.Errorf("pack: duplicate entry %s", f.Name)
		}
		seen[f.Name] = true

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: epoch,
		})
		if err != nil {
			return fmt.Errorf("pack: creating %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("pack: writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("pack: finishing archive: %w", err)
	}
	return nil
}
