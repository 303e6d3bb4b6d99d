// Package normalize turns interactive mongo shell output into plain JSON text.
//
// It is a line-oriented text rewrite, not a parser. Banner lines are dropped
// by literal prefix and the NumberLong and ObjectId constructor wrappers are
// replaced by their bare argument with single-pass regular expressions that
// do not balance nested parentheses. Wrapper text that survives the rewrite
// is reported so the caller can tell why JSON decoding later fails.
package normalize

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"aggcsv/internal/domain"
)

// UpstreamErrorPrefix marks shell output for a query that failed.
const UpstreamErrorPrefix = "Error:"

// DefaultBanners are the status lines printed by the mongo and mongosh shells
// around query output.
var DefaultBanners = []string{
	"MongoDB shell version",
	"connecting to:",
	"Implicit session:",
	"MongoDB server version:",
	"Using MongoDB:",
	"Using Mongosh:",
	"bye",
}

var (
	numberLongRe = regexp.MustCompile(`NumberLong[(](\d+)[)]`)
	objectIDRe   = regexp.MustCompile(`ObjectId[(]([^)]+)[)]`)
	residualRe   = regexp.MustCompile(`(NumberLong|ObjectId)[(]`)
)

// Options configures a Normalizer.
type Options struct {
	// Banners lists line prefixes to drop. Nil means DefaultBanners.
	Banners []string
	// Strict disables banner removal and wrapper rewriting for input that is
	// already plain JSON.
	Strict bool
}

// Result is the normalized input.
type Result struct {
	Buffer []byte
	// Dropped counts banner lines removed.
	Dropped int
	// Rewritten counts wrapper substitutions applied.
	Rewritten int
	// Residual lists 1-based line numbers still containing wrapper syntax.
	Residual []int
}

// Normalizer rewrites shell transcripts into JSON text.
type Normalizer struct {
	banners []string
	strict  bool
	logger  *slog.Logger
}

// New creates a Normalizer.
func New(opts Options, logger *slog.Logger) *Normalizer {
	banners := opts.Banners
	if banners == nil {
		banners = DefaultBanners
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{banners: banners, strict: opts.Strict, logger: logger}
}

// Normalize reads r to exhaustion and returns the rewritten buffer. A UTF-8
// byte order mark is dropped and UTF-16 input with a byte order mark is
// transcoded to UTF-8. If the buffer starts with UpstreamErrorPrefix an
// *domain.UpstreamQueryError holding the text is returned.
func (n *Normalizer) Normalize(r io.Reader) (*Result, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	br := bufio.NewReader(transform.NewReader(r, dec))

	res := &Result{}
	var buf bytes.Buffer
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			n.appendLine(&buf, res, lineNo, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	}
	res.Buffer = buf.Bytes()

	n.logger.Debug("normalized input",
		"lines", lineNo,
		"bytes", len(res.Buffer),
		"banners_dropped", res.Dropped,
		"wrappers_rewritten", res.Rewritten)

	if bytes.HasPrefix(res.Buffer, []byte(UpstreamErrorPrefix)) {
		return res, &domain.UpstreamQueryError{Output: string(res.Buffer)}
	}
	return res, nil
}

func (n *Normalizer) appendLine(buf *bytes.Buffer, res *Result, lineNo int, line string) {
	if n.strict {
		buf.WriteString(line)
		return
	}
	if n.isBanner(line) {
		res.Dropped++
		return
	}

	res.Rewritten += len(numberLongRe.FindAllStringIndex(line, -1))
	line = numberLongRe.ReplaceAllString(line, "$1")
	res.Rewritten += len(objectIDRe.FindAllStringIndex(line, -1))
	line = objectIDRe.ReplaceAllString(line, "$1")

	if residualRe.MatchString(line) {
		res.Residual = append(res.Residual, lineNo)
		n.logger.Warn("wrapper syntax left after rewrite", "line", lineNo)
	}
	buf.WriteString(line)
}

func (n *Normalizer) isBanner(line string) bool {
	for _, prefix := range n.banners {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
