package importer

// placeholder.go synthesizes stand-in CPFs for rows that arrive without one
// (permissive mode only). A placeholder is structurally distinguishable
// from a real CPF: real CPFs are purely numeric, placeholders carry a fixed
// non-numeric prefix. Uniqueness within a batch is guaranteed by the
// monotonically increasing counter; the time suffix keeps placeholders from
// different batches from colliding in the store.

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderPrefix marks a synthesized CPF. The follow-up workflow filters
// on this prefix to find students whose real CPF still needs collecting.
const PlaceholderPrefix = "TEMP"

// placeholderSeq is the batch-scoped placeholder generator. It is created
// with the batch and discarded with it; nothing about it is process-global.
type placeholderSeq struct {
	opts    Options
	counter int
}

// next returns the next placeholder: TEMP + 3-digit counter + the last four
// digits of the current unix time.
func (p *placeholderSeq) next() string {
	p.counter++
	unix := strconv.FormatInt(p.opts.now().Unix(), 10)
	if len(unix) > 4 {
		unix = unix[len(unix)-4:]
	}
	return fmt.Sprintf("%s%03d%s", PlaceholderPrefix, p.counter, unix)
}

// IsPlaceholderCPF reports whether a CPF value was synthesized by the
// pipeline rather than supplied by the source data.
func IsPlaceholderCPF(s string) bool {
	return strings.HasPrefix(s, PlaceholderPrefix)
}
