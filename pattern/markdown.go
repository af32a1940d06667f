package pattern

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// Range is a half-open byte range [Start, End) of a pass text.
type Range struct {
	Start int
	End   int
}

// ProtectedRanges parses src as Markdown and returns the sorted, merged byte
// ranges no pattern pass may rewrite: code blocks, code spans, HTML blocks,
// inline raw HTML, and links or images including their destinations.
// Autolinks in angle brackets are always protected; bare URLs and email
// addresses only when bareURLs is set.
func ProtectedRanges(src []byte, bareURLs bool) []Range {
	root := markdown.Parser().Parse(text.NewReader(src))

	var ranges []Range
	addLines := func(lines *text.Segments) {
		if lines == nil {
			return
		}
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			ranges = append(ranges, Range{Start: seg.Start, End: seg.Stop})
		}
	}

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			addLines(node.Lines())
			if node.Info != nil {
				ranges = append(ranges, Range{Start: node.Info.Segment.Start, End: node.Info.Segment.Stop})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeBlock:
			addLines(node.Lines())
			return gmast.WalkSkipChildren, nil
		case *gmast.HTMLBlock:
			addLines(node.Lines())
			if node.HasClosure() {
				ranges = append(ranges, Range{Start: node.ClosureLine.Start, End: node.ClosureLine.Stop})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.RawHTML:
			addLines(node.Segments)
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			if r, ok := textSpan(node); ok {
				ranges = append(ranges, r)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.AutoLink:
			r, ok := autoLinkSpan(src, node)
			if !ok {
				return gmast.WalkSkipChildren, nil
			}
			bracketed := r.Start > 0 && src[r.Start-1] == '<'
			if bracketed {
				r.Start--
				if r.End < len(src) && src[r.End] == '>' {
					r.End++
				}
			}
			if bracketed || bareURLs {
				ranges = append(ranges, r)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.Link, *gmast.Image:
			if r, ok := textSpan(node); ok {
				ranges = append(ranges, linkSpan(src, r))
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	return mergeRanges(ranges)
}

// textSpan returns the range covering every text segment below n.
func textSpan(n gmast.Node) (Range, bool) {
	r := Range{Start: -1}
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			if r.Start < 0 || t.Segment.Start < r.Start {
				r.Start = t.Segment.Start
			}
			if t.Segment.Stop > r.End {
				r.End = t.Segment.Stop
			}
		}
		return gmast.WalkContinue, nil
	})
	return r, r.Start >= 0
}

// autoLinkSpan returns the range of an autolink's label. The label is a
// subslice of src, so its offset follows from the capacities.
func autoLinkSpan(src []byte, n *gmast.AutoLink) (Range, bool) {
	label := n.Label(src)
	start := cap(src) - cap(label)
	end := start + len(label)
	if len(label) == 0 || start < 0 || end > len(src) || !bytes.Equal(src[start:end], label) {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// linkSpan widens a link label range to the opening "[" and through the
// destination "(...)" or reference label "[...]".
func linkSpan(src []byte, label Range) Range {
	start := label.Start
	for start > 0 && src[start-1] != '[' {
		start--
	}
	if start > 0 {
		start--
	}

	end := label.End
	for end < len(src) && src[end] != ']' {
		end++
	}
	if end >= len(src) {
		return Range{Start: start, End: len(src)}
	}
	end++ // past "]"

	if end < len(src) {
		switch src[end] {
		case '(':
			depth := 0
			for ; end < len(src); end++ {
				if src[end] == '(' {
					depth++
				} else if src[end] == ')' {
					depth--
					if depth == 0 {
						end++
						break
					}
				}
			}
		case '[':
			for end < len(src) && src[end] != ']' {
				end++
			}
			if end < len(src) {
				end++
			}
		}
	}
	return Range{Start: start, End: end}
}

func mergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// overlapsAny reports whether [start, end) intersects a sorted range list.
func overlapsAny(ranges []Range, start, end int) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].End > start })
	return i < len(ranges) && ranges[i].Start < end
}
