/*
Copyright 2017 Google Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package sqlwriter renders a statement or expression tree back to SQL
// text (spec.md §6.3's pretty-printer), for SQL task data and any other
// callsite that needs a normalized script form of a statement.
package sqlwriter

import (
	"bytes"
	"fmt"
)

// Node is the pretty-printing contract a statement or expression must
// satisfy to be rendered through a TrackedBuffer, generalized from
// vitess's SQLNode to this repo's AST (see analyzer.Statement's Format
// methods).
type Node interface {
	Format(buf *TrackedBuffer)
}

// NodeFormatter defines the signature of a custom node formatter
// function that can be given to TrackedBuffer for code generation.
type NodeFormatter func(buf *TrackedBuffer, node Node)

// TrackedBuffer rebuilds a script from an AST.
// nodeFormatter is the formatting function the buffer will use to
// format a node. By default (nil), it calls the node's own Format.
type TrackedBuffer struct {
	*bytes.Buffer
	nodeFormatter NodeFormatter
}

// NewTrackedBuffer creates a new TrackedBuffer.
func NewTrackedBuffer(nodeFormatter NodeFormatter) *TrackedBuffer {
	return &TrackedBuffer{
		Buffer:        new(bytes.Buffer),
		nodeFormatter: nodeFormatter,
	}
}

// WriteNode initiates the writing of a single Node tree by passing
// through to Myprintf with a default format string.
func (buf *TrackedBuffer) WriteNode(node Node) *TrackedBuffer {
	buf.Myprintf("%v", node)
	return buf
}

// Myprintf mimics fmt.Fprintf(buf, ...), but limited to Node(%v),
// string/byte-slice(%s) and byte/rune(%c).
//
// The name must be something other than the usual Printf() to avoid "go vet"
// warnings due to our custom format specifiers.
func (buf *TrackedBuffer) Myprintf(format string, values ...interface{}) {
	end := len(format)
	fieldnum := 0
	for i := 0; i < end; {
		lasti := i
		for i < end && format[i] != '%' {
			i++
		}
		if i > lasti {
			buf.WriteString(format[lasti:i])
		}
		if i >= end {
			break
		}
		i++ // '%'
		switch format[i] {
		case 'c':
			switch v := values[fieldnum].(type) {
			case byte:
				buf.WriteByte(v)
			case rune:
				buf.WriteRune(v)
			default:
				panic(fmt.Sprintf("unexpected TrackedBuffer type %T", v))
			}
		case 's':
			switch v := values[fieldnum].(type) {
			case []byte:
				buf.Write(v)
			case string:
				buf.WriteString(v)
			default:
				panic(fmt.Sprintf("unexpected TrackedBuffer type %T", v))
			}
		case 'v':
			if values[fieldnum] == nil {
				fieldnum++
				i++
				continue
			}
			node := values[fieldnum].(Node)
			if buf.nodeFormatter == nil {
				node.Format(buf)
			} else {
				buf.nodeFormatter(buf, node)
			}
		default:
			panic("unexpected")
		}
		fieldnum++
		i++
	}
}

// Print renders node through a fresh TrackedBuffer using its own
// Format method.
func Print(node Node) string {
	if node == nil {
		return ""
	}
	buf := NewTrackedBuffer(nil)
	buf.WriteNode(node)
	return buf.String()
}
