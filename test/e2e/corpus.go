// Package e2e ingests a generated corpus through files of every supported type and checks
// that retrieval, source search and answering find each fact again.
package e2e

import (
	"fmt"
	"strings"
)

var (
	names = []string{
		"Varenko", "Mirabel", "Toskin", "Alvarre", "Quenby", "Dorrit", "Halvard", "Isobel", "Jarnik", "Kestrel",
		"Lumiere", "Moravec", "Nadrik", "Orsolya", "Pellam", "Rosalind", "Sevrin", "Tamsin", "Ulrich", "Vesna",
		"Wendric", "Yarrow", "Zelenka", "Ambrose", "Briony", "Castellan", "Delphine", "Emrys", "Fenwick", "Galen",
		"Hesper", "Ilario", "Jessamy", "Kaspar", "Leander", "Melisande", "Nerys", "Oberon", "Perpetua", "Radomir",
	}
	places = []string{
		"Molusta", "Kerrow", "Tavistock", "Brenna", "Ostrava", "Calder", "Vigo", "Skerry", "Lindau", "Ravenna",
	}
	collections = []string{
		"blue glass bottles", "brass compasses", "pressed seaweed", "antique maps", "clay whistles",
		"copper kettles", "moth specimens", "tin soldiers", "river stones", "old postcards", "silver thimbles",
		"paper lanterns", "carved chess pieces",
	}
)

// Fact is one corpus entry: a keeper, the island of their lighthouse and what they collect.
type Fact struct {
	Name    string
	Place   string
	Collect string
	// Ext is the file type the fact is written as.
	Ext string
}

// Sentences returns the two sentences describing the fact.
func (f Fact) Sentences() []string {
	return []string{
		fmt.Sprintf("%s keeps the lighthouse on %s.", f.Name, f.Place),
		fmt.Sprintf("%s collects %s.", f.Name, f.Collect),
	}
}

// Text is the fact as plain prose.
func (f Fact) Text() string {
	return strings.Join(f.Sentences(), " ")
}

// FileName is the file the fact is written to.
func (f Fact) FileName() string {
	return strings.ToLower(f.Name) + f.Ext
}

// BuildCorpus returns one fact per name, cycling through exts for the file types.
func BuildCorpus(exts []string) []Fact {
	facts := make([]Fact, len(names))
	for i, name := range names {
		facts[i] = Fact{
			Name:    name,
			Place:   places[i%len(places)],
			Collect: collections[(i*7)%len(collections)],
			Ext:     exts[i%len(exts)],
		}
	}
	return facts
}
