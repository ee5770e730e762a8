// Package tab dispatches a formatting request to the parse/format pair of
// one record kind.
package tab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"rbformat/internal/formatter"
	"rbformat/internal/maprepair"
	"rbformat/internal/parser"
	"rbformat/internal/record"
)

// FailurePlaceholder is shown in place of output when formatting fails.
const FailurePlaceholder = "Ошибка форматирования"

// ErrNotRecordBased is returned by Inspect for tabs that have no records.
var ErrNotRecordBased = errors.New("tab has no records")

// Result is the output of one formatting request.
type Result struct {
	Output string
	// Errors lists records that were skipped or emitted as error markers.
	Errors []error
	// Records counts the records the parser produced.
	Records int
}

// Handler is the parse/format pair for one tab.
type Handler interface {
	Format(input string, opts record.Options) Result
	// Inspect returns the parsed records without formatting them.
	Inspect(input string) (any, []error, error)
}

type recordHandler[R any] struct {
	parse  func(string) ([]R, []error)
	format func([]R, record.Options) (string, []error)
}

func (h recordHandler[R]) Format(input string, opts record.Options) Result {
	recs, errs := h.parse(input)
	out, ferrs := h.format(recs, opts)
	return Result{Output: out, Errors: append(errs, ferrs...), Records: len(recs)}
}

func (h recordHandler[R]) Inspect(input string) (any, []error, error) {
	recs, errs := h.parse(input)
	return recs, errs, nil
}

type mapHandler struct{}

func (mapHandler) Format(input string, _ record.Options) Result {
	return Result{Output: maprepair.RepairMapText(input)}
}

func (mapHandler) Inspect(string) (any, []error, error) {
	return nil, nil, ErrNotRecordBased
}

// noErrs adapts a formatter that cannot report per-record errors.
func noErrs[R any](f func([]R, record.Options) string) func([]R, record.Options) (string, []error) {
	return func(recs []R, opts record.Options) (string, []error) {
		return f(recs, opts), nil
	}
}

var handlers = map[record.Kind]Handler{
	record.KindLibrary: recordHandler[record.Library]{
		parse:  parser.ParseLibrary,
		format: noErrs(formatter.Library),
	},
	record.KindJobChange: recordHandler[record.JobChange]{
		parse:  parser.ParseJobChange,
		format: noErrs(formatter.JobChange),
	},
	record.KindMedal: recordHandler[record.Medal]{
		parse:  parser.ParseMedal,
		format: formatter.Medal,
	},
	record.KindFollower: recordHandler[parser.FollowerEntry]{
		parse: parser.ParseFollower,
		format: func(entries []parser.FollowerEntry, _ record.Options) (string, []error) {
			return formatter.Follower(entries), nil
		},
	},
	record.KindItems: recordHandler[record.Item]{
		parse: parser.ParseItems,
		format: func(items []record.Item, _ record.Options) (string, []error) {
			return formatter.Items(items, nil), nil
		},
	},
	record.KindMap: mapHandler{},
}

// Lookup returns the handler registered for kind.
func Lookup(kind record.Kind) (Handler, error) {
	h, ok := handlers[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported tab %q", kind)
	}
	return h, nil
}

// Format parses input as records of kind and renders them. Blank input
// returns record.ErrEmptyInput with an empty result. Per-record problems are
// collected in Result.Errors and never fail the call.
func Format(kind record.Kind, input string, opts record.Options) (res Result, err error) {
	h, err := Lookup(kind)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(input) == "" {
		return Result{}, record.ErrEmptyInput
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Output: FailurePlaceholder}
			err = fmt.Errorf("format %s: %v", kind, r)
		}
	}()

	res = h.Format(input, opts)
	for _, e := range res.Errors {
		log.Warn().Err(e).Str("tab", string(kind)).Msg("Skipped record")
	}
	log.Debug().
		Str("tab", string(kind)).
		Str("lang", string(opts.Language)).
		Int("records", res.Records).
		Int("errors", len(res.Errors)).
		Msg("Formatted input")
	return res, nil
}
