// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorse-io/slopemf/base/progress"
	"github.com/gorse-io/slopemf/common/parallel"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const maxLineSize = 16 * 1024 * 1024

// SplitConfig configures the extraction of a JSON-lines corpus into CSV. The value
// is handed to every worker; nothing is shared through package state.
type SplitConfig struct {
	Keys      []string // keys to extract, in output column order
	Jobs      int      // number of workers
	ChunkSize int      // lines per worker task
}

type chunk struct {
	firstLine int
	lines     []string
}

// Split reads one JSON object per line from r and writes a CSV table to w: a header
// made of cfg.Keys, then one row per non-blank input line in input order. A missing key
// or a null value becomes an empty field, strings are written verbatim and any other
// value as compact JSON. It returns the number of rows written.
func Split(ctx context.Context, r io.Reader, w io.Writer, cfg SplitConfig, reporter progress.Reporter) (int, error) {
	if len(cfg.Keys) == 0 {
		return 0, errors.NotValidf("empty key list")
	}
	cfg.Jobs = max(cfg.Jobs, 1)
	cfg.ChunkSize = max(cfg.ChunkSize, 1)
	batchSize := cfg.Jobs * cfg.ChunkSize

	writer := csv.NewWriter(w)
	if err := writer.Write(cfg.Keys); err != nil {
		return 0, errors.Trace(err)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNumber, rowCount := 0, 0
	for {
		// read a batch of lines
		batch := make([]string, 0, batchSize)
		firstLine := lineNumber + 1
		for len(batch) < batchSize && scanner.Scan() {
			lineNumber++
			batch = append(batch, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return rowCount, errors.Trace(err)
		}
		if len(batch) == 0 {
			break
		}
		// extract fields in parallel
		chunks := lo.Map(lo.Chunk(batch, cfg.ChunkSize), func(lines []string, i int) chunk {
			return chunk{firstLine: firstLine + i*cfg.ChunkSize, lines: lines}
		})
		results := make([][][]string, len(chunks))
		err := parallel.Parallel(ctx, len(chunks), cfg.Jobs, func(_, jobId int) error {
			rows, err := extractChunk(chunks[jobId], cfg)
			if err != nil {
				return errors.Trace(err)
			}
			results[jobId] = rows
			return nil
		})
		if err != nil {
			return rowCount, errors.Trace(err)
		}
		// gather in input order
		for _, rows := range results {
			if err := writer.WriteAll(rows); err != nil {
				return rowCount, errors.Trace(err)
			}
			rowCount += len(rows)
		}
		if reporter != nil {
			reporter.Report(rowCount, -1)
		}
	}
	writer.Flush()
	return rowCount, errors.Trace(writer.Error())
}

func extractChunk(c chunk, cfg SplitConfig) ([][]string, error) {
	rows := make([][]string, 0, len(c.lines))
	for i, line := range c.lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := extractRow(line, cfg.Keys)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", c.firstLine+i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func extractRow(line string, keys []string) ([]string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &object); err != nil {
		return nil, errors.Trace(err)
	}
	row := make([]string, len(keys))
	for i, key := range keys {
		raw, ok := object[key]
		if !ok || string(raw) == "null" {
			continue
		}
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &row[i]); err != nil {
				return nil, errors.Trace(err)
			}
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, errors.Trace(err)
		}
		row[i] = buf.String()
	}
	return row, nil
}
