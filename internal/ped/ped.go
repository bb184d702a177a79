// Package ped reads pedigree (PED) files.
package ped

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sex of an individual, as coded in PED column 5.
type Sex int

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
)

// Disease is the affection status, PED column 6.
type Disease int

const (
	DiseaseUnknown Disease = iota
	DiseaseUnaffected
	DiseaseAffected
)

// Individual is one row of a PED file. Father and Mother are empty for
// founders.
type Individual struct {
	Family  string
	Name    string
	Father  string
	Mother  string
	Sex     Sex
	Disease Disease
}

// Pedigree holds the individuals of a PED file in file order.
type Pedigree struct {
	Individuals []Individual
}

// SampleNames returns the individual names in file order.
func (p *Pedigree) SampleNames() []string {
	names := make([]string, len(p.Individuals))
	for i, ind := range p.Individuals {
		names[i] = ind.Name
	}
	return names
}

// Read parses the PED file at path.
func Read(path string) (*Pedigree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ped file: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse reads PED rows from r. Blank lines and lines starting with '#'
// are skipped; columns are separated by whitespace.
func Parse(r io.Reader) (*Pedigree, error) {
	p := &Pedigree{}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("line %d: expected 6 columns, got %d", lineNumber, len(fields))
		}
		ind := Individual{
			Family:  fields[0],
			Name:    fields[1],
			Father:  parent(fields[2]),
			Mother:  parent(fields[3]),
			Sex:     parseSex(fields[4]),
			Disease: parseDisease(fields[5]),
		}
		if seen[ind.Name] {
			return nil, fmt.Errorf("line %d: duplicate individual %s", lineNumber, ind.Name)
		}
		seen[ind.Name] = true
		p.Individuals = append(p.Individuals, ind)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ped file: %w", err)
	}
	if len(p.Individuals) == 0 {
		return nil, fmt.Errorf("no individuals in ped file")
	}
	return p, nil
}

func parent(s string) string {
	if s == "0" {
		return ""
	}
	return s
}

func parseSex(s string) Sex {
	switch s {
	case "1":
		return SexMale
	case "2":
		return SexFemale
	}
	return SexUnknown
}

func parseDisease(s string) Disease {
	switch s {
	case "1":
		return DiseaseUnaffected
	case "2":
		return DiseaseAffected
	}
	return DiseaseUnknown
}
