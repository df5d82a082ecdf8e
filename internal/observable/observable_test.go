package observable

import (
	"reflect"
	"testing"
)

func TestValue_SetNotifiesAndUnsubscribe(t *testing.T) {
	t.Parallel()

	v := Undefined[string]()
	if v.Defined() {
		t.Fatalf("expected undefined value")
	}

	var got []string
	unsub := v.Subscribe(func(s string) { got = append(got, s) })
	v.Set("left")
	v.Set("left")
	unsub()
	v.Set("right")

	if !v.Defined() || v.Get() != "right" {
		t.Fatalf("unexpected state: defined=%v value=%q", v.Defined(), v.Get())
	}
	if want := []string{"left", "left"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("notifications: got %v want %v", got, want)
	}

	v.Clear()
	if v.Defined() || v.Get() != "" {
		t.Fatalf("expected cleared value")
	}
}

func TestValue_SubscriberMayUnsubscribeItself(t *testing.T) {
	t.Parallel()

	v := NewValue(0)
	calls := 0
	var unsub func()
	unsub = v.Subscribe(func(int) {
		calls++
		unsub()
	})
	v.Set(1)
	v.Set(2)
	if calls != 1 {
		t.Fatalf("expected one call; got %d", calls)
	}
}

func TestList_Mutations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   func(l *List[string]) error
		want []string
	}{
		{
			name: "append",
			op:   func(l *List[string]) error { l.Append("d"); return nil },
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "insert front",
			op:   func(l *List[string]) error { return l.Insert(0, "z") },
			want: []string{"z", "a", "b", "c"},
		},
		{
			name: "insert end",
			op:   func(l *List[string]) error { return l.Insert(3, "z") },
			want: []string{"a", "b", "c", "z"},
		},
		{
			name: "remove middle",
			op:   func(l *List[string]) error { _, err := l.RemoveAt(1); return err },
			want: []string{"a", "c"},
		},
		{
			name: "move forward",
			op:   func(l *List[string]) error { return l.Move(0, 2) },
			want: []string{"b", "c", "a"},
		},
		{
			name: "move backward",
			op:   func(l *List[string]) error { return l.Move(2, 0) },
			want: []string{"c", "a", "b"},
		},
		{
			name: "replace",
			op:   func(l *List[string]) error { l.Replace([]string{"x"}); return nil },
			want: []string{"x"},
		},
		{
			name: "remove all",
			op:   func(l *List[string]) error { l.RemoveAll(); return nil },
			want: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := NewList("a", "b", "c")
			var seen []string
			l.Subscribe(func(items []string) { seen = items })
			if err := tt.op(l); err != nil {
				t.Fatalf("op: %v", err)
			}
			got := l.Items()
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("items: got %v want %v", got, tt.want)
			}
			if !reflect.DeepEqual(seen, tt.want) {
				t.Fatalf("notified: got %v want %v", seen, tt.want)
			}
		})
	}
}

func TestList_OutOfRange(t *testing.T) {
	t.Parallel()

	l := NewList(1, 2)
	if err := l.Insert(3, 9); err != ErrIndexOutOfRange {
		t.Fatalf("insert: expected ErrIndexOutOfRange; got %v", err)
	}
	if _, err := l.RemoveAt(-1); err != ErrIndexOutOfRange {
		t.Fatalf("remove: expected ErrIndexOutOfRange; got %v", err)
	}
	if err := l.Move(0, 2); err != ErrIndexOutOfRange {
		t.Fatalf("move: expected ErrIndexOutOfRange; got %v", err)
	}
	if _, ok := l.At(5); ok {
		t.Fatalf("expected At out of range to fail")
	}
}
