// Package population joins speech locations against a census table
// (SUB-EST2020 layout: NAME, STNAME, CENSUS2010POP columns). The match is
// deliberately fuzzy on the city side: census place names carry suffixes
// like "Columbus city", so the city is matched as a name prefix while the
// state must match exactly.
package population

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// NotFound is the population value for locations with no matching census row.
const NotFound = -1

type row struct {
	name       string
	state      string
	population int
}

type Index struct {
	rows []row
}

// LoadIndex reads the census CSV. Column order is resolved from the header
// line, so trimmed exports with fewer columns still load.
func LoadIndex(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read census header: %w", err)
	}
	nameCol, stateCol, popCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "NAME":
			nameCol = i
		case "STNAME":
			stateCol = i
		case "CENSUS2010POP":
			popCol = i
		}
	}
	if nameCol < 0 || stateCol < 0 || popCol < 0 {
		return nil, fmt.Errorf("census file %s is missing NAME/STNAME/CENSUS2010POP columns", path)
	}

	idx := &Index{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read census row: %w", err)
		}
		if len(record) <= nameCol || len(record) <= stateCol || len(record) <= popCol {
			continue
		}
		pop, err := strconv.Atoi(strings.TrimSpace(record[popCol]))
		if err != nil {
			continue
		}
		idx.rows = append(idx.rows, row{
			name:       record[nameCol],
			state:      record[stateCol],
			population: pop,
		})
	}
	return idx, nil
}

// Lookup returns the census population for a city/state pair: rows whose
// NAME starts with the city and whose STNAME equals the state, last match
// wins. NotFound when nothing matches. A nil index matches nothing.
func (idx *Index) Lookup(state, city string) int {
	if idx == nil || city == "" {
		return NotFound
	}
	result := NotFound
	for _, r := range idx.rows {
		if strings.HasPrefix(r.name, city) && r.state == state {
			result = r.population
		}
	}
	return result
}
