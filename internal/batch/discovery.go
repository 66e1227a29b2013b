package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Document is one deed in a working folder: the cropped table image
// plus the OCR markup files produced from it.
type Document struct {
	// TableImage is the path to the cropped <base>_table.jpg.
	TableImage string
	// Markups are the sibling <base>_tbl*.md files, sorted.
	Markups []string
}

// Base returns the staging base path for the document, the table image
// path without its _table.jpg suffix.
func (d *Document) Base() string {
	return strings.TrimSuffix(d.TableImage, "_table.jpg")
}

// DiscoverDocuments walks root for cropped table images and pairs each
// with its OCR markup files. Documents come back sorted by path.
func DiscoverDocuments(root string) ([]Document, error) {
	var docs []Document
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, "_table.jpg") {
			return nil
		}

		base := strings.TrimSuffix(path, "_table.jpg")
		markups, err := filepath.Glob(base + "_tbl*.md")
		if err != nil {
			return err
		}
		sort.Strings(markups)
		docs = append(docs, Document{TableImage: path, Markups: markups})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering table images: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].TableImage < docs[j].TableImage })
	return docs, nil
}

// ParseRange parses a 1-based inclusive "start,end" selection against a
// list of n documents. A single number selects just that document; an
// empty spec selects everything.
func ParseRange(spec string, n int) (start, end int, err error) {
	if spec == "" {
		return 1, n, nil
	}
	parts := strings.Split(spec, ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("range %q: want start,end", spec)
	}
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", spec, err)
	}
	end = start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("range %q: %w", spec, err)
		}
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("range %q: want 1 <= start <= end", spec)
	}
	if end > n {
		end = n
	}
	if start > n {
		return 0, 0, fmt.Errorf("range %q starts past the last document (%d)", spec, n)
	}
	return start, end, nil
}
