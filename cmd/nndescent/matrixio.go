package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

// loadMatrix reads a whitespace/comma-delimited numeric matrix, one row
// per line, from path.
func loadMatrix(path string) (*matrix.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]float32
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		row := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, err
			}
			row[i] = float32(v)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return matrix.FromRows(rows)
}

// writeIndexGraph writes g as JSON to path, or to stdout if path is "-" or
// empty.
func writeIndexGraph(path string, g *matrix.IndexGraph) error {
	out := os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// loadIndexGraph reads an IndexGraph previously written by writeIndexGraph,
// used to seed Build/Query's init parameter from a prior run.
func loadIndexGraph(path string) (*matrix.IndexGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var g matrix.IndexGraph
	if err := json.NewDecoder(f).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}
