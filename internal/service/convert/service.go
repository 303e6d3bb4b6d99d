// Package convert runs the aggregation-to-CSV pipeline: normalize, decode,
// validate, resolve columns, serialize.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"aggcsv/internal/config"
	"aggcsv/internal/csvout"
	"aggcsv/internal/decode"
	"aggcsv/internal/domain"
	"aggcsv/internal/normalize"
	"aggcsv/internal/validate"
)

// Summary describes a completed conversion.
type Summary struct {
	Columns           int
	Rows              int
	BannersDropped    int
	WrappersRewritten int
}

// ConvertService converts aggregation output to delimited text.
type ConvertService struct {
	normalizer *normalize.Normalizer
	writer     *csvout.Writer
	logger     *slog.Logger
}

// NewConvertService creates a new ConvertService from a validated config.
func NewConvertService(cfg *config.Config, logger *slog.Logger) *ConvertService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	banners := append(append([]string(nil), normalize.DefaultBanners...), cfg.Banners...)
	return &ConvertService{
		normalizer: normalize.New(normalize.Options{Banners: banners, Strict: cfg.StrictJSON}, logger),
		writer:     csvout.NewWriter(cfg.Separator),
		logger:     logger,
	}
}

// Convert reads all of in and writes the table to out. Nothing is written to
// out unless every check passes. Failures are typed domain errors; an
// *domain.UpstreamQueryError carries the upstream text for the caller to echo.
func (s *ConvertService) Convert(in io.Reader, out io.Writer) (*Summary, error) {
	norm, err := s.normalizer.Normalize(in)
	if err != nil {
		return nil, err
	}

	root, err := decode.Parse(norm.Buffer)
	if err != nil {
		return nil, err
	}

	env, err := validate.Validate(root)
	if err != nil {
		return nil, err
	}

	cols := csvout.ResolveColumns(env.Result, s.writer.Separator())
	s.logger.Debug("resolved columns", "columns", len(cols), "documents", len(env.Result))

	var table bytes.Buffer
	rows, err := s.writer.Write(&table, cols, env.Result)
	if err != nil {
		return nil, err
	}
	if _, err := table.WriteTo(out); err != nil {
		if !csvout.IsBrokenPipe(err) {
			return nil, fmt.Errorf("write output: %w", err)
		}
		s.logger.Debug("output closed early", "error", err)
	}

	return &Summary{
		Columns:           len(cols),
		Rows:              rows,
		BannersDropped:    norm.Dropped,
		WrappersRewritten: norm.Rewritten,
	}, nil
}

// UpstreamOutput returns the upstream error text carried by err, if any.
func UpstreamOutput(err error) (string, bool) {
	var upstream *domain.UpstreamQueryError
	if errors.As(err, &upstream) {
		return upstream.Output, true
	}
	return "", false
}
