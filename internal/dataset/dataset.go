// Package dataset persists the suburb dataset as a single JSON document: a
// metadata block plus a map of suburb records keyed by display name. The
// file is the resumption checkpoint for every pipeline stage, so saves go
// through a temp file and an atomic rename.
package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/haihuyentran/melbourne-properties/internal/model"
)

// Meta describes the provenance of the suburb data.
type Meta struct {
	Source      string `json:"source,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	DataQuarter string `json:"data_quarter,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Dataset is the in-memory form of the persisted suburb file. It assumes a
// single writer; pipeline stages run sequentially over it.
type Dataset struct {
	Meta    Meta                           `json:"meta"`
	Suburbs map[string]*model.SuburbRecord `json:"suburbs"`

	path string
}

// New returns an empty dataset that will save to path.
func New(path string) *Dataset {
	return &Dataset{
		Suburbs: map[string]*model.SuburbRecord{},
		path:    path,
	}
}

// Load reads the dataset file at path. A missing file yields an empty
// dataset; an unreadable or unparsable file is an error, and it is the
// caller's only startup-fatal condition.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	ds := New(path)
	if err := json.Unmarshal(raw, ds); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	if ds.Suburbs == nil {
		ds.Suburbs = map[string]*model.SuburbRecord{}
	}
	return ds, nil
}

// Save writes the dataset atomically: marshal to a temp file in the target
// directory, then rename over the destination. LastUpdated is stamped on
// every save.
func (d *Dataset) Save() error {
	d.Meta.LastUpdated = time.Now().UTC().Format("2006-01-02")

	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "dataset: marshal")
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "dataset: temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "dataset: write temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "dataset: close temp")
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "dataset: rename to %s", d.path)
	}
	return nil
}

// Get returns the record for name, nil when absent.
func (d *Dataset) Get(name string) *model.SuburbRecord {
	return d.Suburbs[name]
}

// Put inserts or replaces the record for name.
func (d *Dataset) Put(name string, rec *model.SuburbRecord) {
	d.Suburbs[name] = rec
}

// Len returns the number of suburb records.
func (d *Dataset) Len() int {
	return len(d.Suburbs)
}

// SortedNames returns suburb names in ascending order. Pipeline stages
// iterate in this order so interrupted runs resume at a stable position.
func (d *Dataset) SortedNames() []string {
	names := make([]string, 0, len(d.Suburbs))
	for name := range d.Suburbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
