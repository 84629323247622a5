// Package inputprocessor resolves a command-line argument into message text:
// a file path, an http(s) URL, "-" for stdin, or the raw string itself.
package inputprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// MaxInputBytes caps how much of a file, URL or stdin is read.
const MaxInputBytes = 1 << 20

// Input types reported in Result.Source.
const (
	SourceRaw   = "raw"
	SourceFile  = "file"
	SourceURL   = "url"
	SourceStdin = "stdin"
)

// Result holds extracted content details.
type Result struct {
	Body        string
	ContentType string
	Source      string
	Location    string // file path or URL; empty for raw and stdin
}

// Processor defines the interface for processing input strings.
type Processor interface {
	Process(ctx context.Context, input string) (Result, error)
}

// New creates a default processor. stdin may be nil to use os.Stdin.
func New(stdin io.Reader) Processor {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &defaultProcessor{
		stdin: stdin,
		http:  resty.New().SetTimeout(15 * time.Second),
	}
}

type defaultProcessor struct {
	stdin io.Reader
	http  *resty.Client
}

var _ Processor = (*defaultProcessor)(nil)

func (p *defaultProcessor) Process(ctx context.Context, input string) (Result, error) {
	if input == "-" {
		data, err := io.ReadAll(io.LimitReader(p.stdin, MaxInputBytes))
		if err != nil {
			return Result{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return Result{Body: string(data), ContentType: http.DetectContentType(data), Source: SourceStdin}, nil
	}

	fi, err := os.Stat(input)
	switch {
	case err == nil && !fi.IsDir():
		return p.readFile(input)
	case err == nil:
		log.Debugf("Input %q is a directory, treating as raw string", input)
	case !errors.Is(err, os.ErrNotExist) && !errors.Is(err, os.ErrInvalid):
		log.Debugf("Stat of %q failed (%v), treating as raw string", input, err)
	}

	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return p.fetch(ctx, u.String())
	}

	return Result{Body: input, ContentType: "text/plain; charset=utf-8", Source: SourceRaw}, nil
}

func (p *defaultProcessor) readFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Result{}, fmt.Errorf("permission denied reading file '%s': %w", path, err)
		}
		return Result{}, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxInputBytes))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	return Result{Body: string(data), ContentType: http.DetectContentType(data), Source: SourceFile, Location: path}, nil
}

func (p *defaultProcessor) fetch(ctx context.Context, rawURL string) (Result, error) {
	resp, err := p.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch URL '%s': %w", rawURL, err)
	}
	body := resp.RawBody()
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxInputBytes))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body from URL '%s': %w", rawURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		hint := data
		if len(hint) > 256 {
			hint = hint[:256]
		}
		return Result{}, fmt.Errorf("failed to fetch URL '%s': status %d - body hint: %s", rawURL, resp.StatusCode(), hint)
	}

	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return Result{Body: string(data), ContentType: ct, Source: SourceURL, Location: rawURL}, nil
}
