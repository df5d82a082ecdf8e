package card

import (
	"strings"

	"resource-cards/internal/model"
)

// DatatypeLookup maps a datatype name to its metadata. It is rebuilt from the
// payload on every parse and never serialized.
type DatatypeLookup map[string]model.Datatype

func NewDatatypeLookup(datatypes []model.Datatype) DatatypeLookup {
	out := make(DatatypeLookup, len(datatypes))
	for _, dt := range datatypes {
		name := strings.TrimSpace(dt.Datatype)
		if name == "" {
			continue
		}
		out[name] = dt
	}
	return out
}

func (l DatatypeLookup) Lookup(name string) (model.Datatype, bool) {
	dt, ok := l[strings.TrimSpace(name)]
	return dt, ok
}

// DefaultWidget returns the default widget id for a datatype. Unknown datatypes
// have no default widget.
func (l DatatypeLookup) DefaultWidget(name string) (string, bool) {
	dt, ok := l.Lookup(name)
	if !ok || !dt.HasDefaultWidget() {
		return "", false
	}
	return *dt.DefaultWidgetID, true
}
