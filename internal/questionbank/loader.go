package questionbank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Format identifies a question source encoding.
type Format string

const (
	FormatJSON      Format = "json"
	FormatDelimited Format = "delimited"
	FormatXLSX      Format = "xlsx"
)

// DetectFormat infers the format from the source's extension. Unknown
// extensions are read as JSON.
func DetectFormat(source string) Format {
	if i := strings.IndexAny(source, "?#"); i >= 0 && isURL(source) {
		source = source[:i]
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv", ".txt", ".tsv":
		return FormatDelimited
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format, opts ParseOptions) (*Bank, error) {
	switch format {
	case FormatDelimited:
		return ParseDelimited(data, opts)
	case FormatXLSX:
		return ParseXLSX(bytes.NewReader(data), opts)
	default:
		return ParseJSON(data, opts)
	}
}

// Loader reads question banks from files or http(s) URLs.
type Loader struct {
	opts   ParseOptions
	client *http.Client
	root   string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// WithRoot resolves relative file sources against dir.
func WithRoot(dir string) LoaderOption {
	return func(l *Loader) { l.root = dir }
}

// NewLoader creates a Loader.
func NewLoader(opts ParseOptions, options ...LoaderOption) *Loader {
	l := &Loader{
		opts:   opts,
		client: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// Load reads the primary source and falls back to the secondary one when the
// primary cannot be read or yields no questions. ErrNoQuestions is returned
// when neither produces a usable bank.
func (l *Loader) Load(ctx context.Context, primary, fallback string) (*Bank, error) {
	log := l.opts.logger()

	var errs []error
	for _, src := range []string{primary, fallback} {
		if src == "" {
			continue
		}
		bank, err := l.LoadSource(ctx, src)
		if err != nil {
			log.Warn("question source failed", zap.String("source", src), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		if bank.Len() == 0 {
			log.Warn("question source has no usable questions", zap.String("source", src))
			errs = append(errs, fmt.Errorf("%s: empty", src))
			continue
		}
		log.Info("loaded questions",
			zap.String("source", src),
			zap.Int("count", bank.Len()),
			zap.Int("issues", len(bank.Issues)),
			zap.String("namespace", bank.Namespace))
		return bank, nil
	}

	if len(errs) == 0 {
		return nil, ErrNoQuestions
	}
	return nil, fmt.Errorf("%w: %w", ErrNoQuestions, errors.Join(errs...))
}

// LoadSource reads and parses a single source.
func (l *Loader) LoadSource(ctx context.Context, source string) (*Bank, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	return Parse(data, DetectFormat(source), l.opts)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !isURL(source) {
		path := source
		if l.root != "" && !filepath.IsAbs(path) {
			path = filepath.Join(l.root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
