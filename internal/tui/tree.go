package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/utils"
)

type treeNode struct {
	name     string
	isFile   bool
	length   int64
	children map[string]*treeNode
}

func newDir(name string) *treeNode {
	return &treeNode{name: name, children: make(map[string]*treeNode)}
}

func (n *treeNode) insert(segments []string, length int64) {
	if len(segments) == 0 {
		return
	}
	child, ok := n.children[segments[0]]
	if !ok {
		child = newDir(segments[0])
		n.children[segments[0]] = child
	}
	if len(segments) == 1 {
		child.isFile = true
		child.length = length
		return
	}
	child.insert(segments[1:], length)
}

func (n *treeNode) sortedChildren() []*treeNode {
	out := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return NaturalLess(out[i].name, out[j].name) })
	return out
}

func (n *treeNode) render(prefix string, last bool, lines []string) []string {
	connector, childPrefix := "├── ", "│   "
	if last {
		connector, childPrefix = "└── ", "    "
	}

	line := prefix + connector + n.name
	if n.isFile {
		line += fmt.Sprintf(" (%d [%s])", n.length, utils.ConvertBytesToHumanReadable(n.length))
	}
	lines = append(lines, line)

	children := n.sortedChildren()
	for i, c := range children {
		lines = c.render(prefix+childPrefix, i == len(children)-1, lines)
	}
	return lines
}

// TreeLines lays out the files of a multi-file torrent as a tree. Each
// directory lists its entries in natural, case-insensitive order.
func TreeLines(files []torrent.FileEntry) []string {
	root := newDir("")
	for _, f := range files {
		root.insert(f.Path, f.Length)
	}

	var lines []string
	children := root.sortedChildren()
	for i, c := range children {
		lines = c.render("", i == len(children)-1, lines)
	}
	return lines
}

// NaturalLess compares case-insensitively, ordering runs of digits by value
// so "file2" sorts before "file10". Exact ties fall back to byte order.
func NaturalLess(a, b string) bool {
	if c := naturalCompare(a, b); c != 0 {
		return c < 0
	}
	return a < b
}

func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			if c := compareDigits(a[si:i], b[sj:j]); c != 0 {
				return c
			}
			continue
		}

		ra, wa := utf8.DecodeRuneInString(a[i:])
		rb, wb := utf8.DecodeRuneInString(b[j:])
		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		i += wa
		j += wb
	}

	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	}
	return 0
}

// compareDigits orders two digit runs by numeric value without parsing, so
// arbitrarily long runs work. Equal values with more leading zeros sort later.
func compareDigits(x, y string) int {
	tx := strings.TrimLeft(x, "0")
	ty := strings.TrimLeft(y, "0")
	if len(tx) != len(ty) {
		if len(tx) < len(ty) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(tx, ty); c != 0 {
		return c
	}
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
