// Package stage segments a parsed Dockerfile into build stages and
// resolves which stage the generated service is derived from.
//
// Segmentation is tolerant: instructions are classified one node at a
// time, and nodes that cannot be classified stay in the stage as Unknown
// entries instead of aborting the walk. Stage names are case-insensitive
// per Docker semantics and stored lowercase.
package stage

import (
	"strconv"
	"strings"

	"github.com/wharflab/berth/internal/dockerfile"
	"github.com/wharflab/berth/internal/instruction"
)

// Stage is one build stage: a FROM instruction and every instruction that
// follows it up to the next FROM.
type Stage struct {
	// Index is the 0-based stage index.
	Index int

	// Name is the AS alias, lowercased. Empty for unnamed stages, which
	// are addressable by positional index instead.
	Name string

	// BaseImage is the FROM image reference as written. In multi-stage
	// files it may name an earlier stage rather than an external image.
	BaseImage string

	// Platform is the FROM --platform value, if any.
	Platform string

	// Line is the 1-based line of the FROM instruction.
	Line int

	// Instructions are the stage's classified instructions in source
	// order, excluding the FROM itself.
	Instructions []instruction.Instruction
}

// Ref returns the reference later instructions use for this stage: the
// alias when named, the positional index rendered as a string otherwise.
func (s *Stage) Ref() string {
	if s.Name != "" {
		return s.Name
	}
	return strconv.Itoa(s.Index)
}

// List is the ordered sequence of stages in a Dockerfile.
//
// The list is immutable after Track returns and safe for concurrent
// read access.
type List struct {
	stages []*Stage

	// byName maps lowercase aliases to stage indexes. A repeated alias
	// points at its last definition, mirroring how every other
	// last-wins instruction behaves here.
	byName map[string]int
}

// Track walks the parse result in source order and groups instructions
// into stages. Every FROM opens a new stage, even when it repeats the
// previous base image. Instructions before the first FROM (global ARGs,
// mostly) cannot contribute to the service model and are skipped.
//
// Classification failures for CMD, ENTRYPOINT, and HEALTHCHECK arguments
// abort tracking because their tokens feed the output model. A file with
// no FROM at all fails with MissingBaseImageError.
func Track(pr *dockerfile.ParseResult) (*List, error) {
	l := &List{byName: make(map[string]int)}

	var current *Stage
	for _, node := range pr.AST.AST.Children {
		ins, err := instruction.FromNode(node)
		if err != nil {
			return nil, err
		}

		if ins.Kind == instruction.KindFrom {
			current = &Stage{
				Index:     len(l.stages),
				Name:      ins.From.Alias,
				BaseImage: ins.From.Image,
				Platform:  ins.From.Platform,
				Line:      ins.Line,
			}
			l.stages = append(l.stages, current)
			if current.Name != "" {
				l.byName[current.Name] = current.Index
			}
			continue
		}

		if current == nil {
			continue
		}
		current.Instructions = append(current.Instructions, ins)
	}

	if len(l.stages) == 0 {
		return nil, &MissingBaseImageError{Path: pr.Path}
	}
	return l, nil
}

// Count returns the number of stages.
func (l *List) Count() int {
	return len(l.stages)
}

// Stages returns all stages in source order.
func (l *List) Stages() []*Stage {
	return l.stages
}

// Final returns the last stage defined, which the service is built from
// when no explicit target is requested.
func (l *List) Final() *Stage {
	return l.stages[len(l.stages)-1]
}

// Target returns the stage selected by ref, an AS alias
// (case-insensitive) or a 0-based positional index. An empty ref selects
// the final stage. An unmatched ref fails with UnknownTargetError.
func (l *List) Target(ref string) (*Stage, error) {
	if ref == "" {
		return l.Final(), nil
	}
	if s := l.lookup(ref, len(l.stages)); s != nil {
		return s, nil
	}
	return nil, &UnknownTargetError{Target: ref}
}

// Resolve resolves a COPY --from style reference made by the stage at
// index before. Only stages defined earlier can match; forward or
// dangling references resolve to nil, as do external image references.
func (l *List) Resolve(ref string, before int) *Stage {
	if before > len(l.stages) {
		before = len(l.stages)
	}
	return l.lookup(ref, before)
}

// lookup matches ref against aliases and positional indexes of stages
// with Index < limit.
func (l *List) lookup(ref string, limit int) *Stage {
	if idx, ok := l.byName[strings.ToLower(ref)]; ok && idx < limit {
		return l.stages[idx]
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 0 && idx < limit {
		return l.stages[idx]
	}
	return nil
}
