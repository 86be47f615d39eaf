package questionbank

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParseDelimited parses the fallback text format, one question per line:
//
//	12|りんご,apple
//	りんご,apple
//
// Blank lines and lines starting with '#' are ignored. Lines that cannot be
// parsed are skipped and reported as issues.
func ParseDelimited(data []byte, opts ParseOptions) (*Bank, error) {
	log := opts.logger()
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var records []record
	var issues []Issue

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r, err := parseDelimitedLine(line)
		if err != nil {
			issues = append(issues, Issue{Position: lineNo, Err: err, Skipped: true})
			log.Warn("skipping malformed line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		r.Position = lineNo
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	questions, normIssues := normalize(records, opts)
	return &Bank{
		Namespace: opts.DefaultNamespace,
		Questions: questions,
		Issues:    append(issues, normIssues...),
	}, nil
}

func parseDelimitedLine(line string) (record, error) {
	var r record
	rest := line
	if idPart, tail, ok := strings.Cut(line, "|"); ok {
		id, err := strconv.Atoi(strings.TrimSpace(idPart))
		if err != nil || id < 0 {
			return r, fmt.Errorf("%w: bad id %q", ErrMalformed, idPart)
		}
		r.ID = &id
		rest = tail
	}

	prompt, answer, ok := strings.Cut(rest, ",")
	if !ok {
		return r, fmt.Errorf("%w: expected \"jp,en\"", ErrMalformed)
	}
	r.Prompt = prompt
	r.Answer = answer
	return r, nil
}
