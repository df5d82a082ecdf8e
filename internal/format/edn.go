package format

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN. Map keys become kebab-case keywords
// (component_id -> :component-id).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.value(&buf, x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) value(buf *bytes.Buffer, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		buf.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			buf.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		items := make([]func(), 0, len(t))
		for _, it := range t {
			it := it
			items = append(items, func() { e.value(buf, it, level+1) })
		}
		e.collection(buf, '[', ']', items, level)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]func(), 0, len(keys))
		for _, k := range keys {
			k := k
			items = append(items, func() {
				buf.WriteString(keyword(k))
				buf.WriteByte(' ')
				e.value(buf, t[k], level+1)
			})
		}
		e.collection(buf, '{', '}', items, level)
	default:
		buf.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e ednEncoder) collection(buf *bytes.Buffer, open, close byte, items []func(), level int) {
	buf.WriteByte(open)
	if len(items) == 0 {
		buf.WriteByte(close)
		return
	}
	sep := " "
	if e.pretty {
		sep = "\n"
		buf.WriteByte('\n')
	}
	for i, write := range items {
		if e.pretty {
			buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		}
		write()
		if i < len(items)-1 {
			buf.WriteString(sep)
		}
	}
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
	buf.WriteByte(close)
}

func keyword(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return ":" + s
}
