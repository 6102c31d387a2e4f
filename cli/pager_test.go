package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func newSizedPager(t *testing.T, content string) *pagerModel {
	t.Helper()
	m := NewPager("Report", content)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 6})
	if !m.ready {
		t.Fatal("pager not ready after WindowSizeMsg")
	}
	return m
}

func TestPagerSearch(t *testing.T) {
	m := newSizedPager(t, "| symbol | note |\n| AAPL | alpha |\n| Beta | x |\n| MSFT | ALPHA beta |\n")

	tests := []struct {
		query string
		want  []int
	}{
		{query: "alpha", want: []int{1, 3}},
		{query: "beta", want: []int{2, 3}},
		{query: "Beta", want: []int{2}},
		{query: "BETA", want: nil},
		{query: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m.performSearch(tt.query)
			if diff := cmp.Diff(tt.want, m.search.matches); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPagerSearchIgnoresANSI(t *testing.T) {
	m := newSizedPager(t, "\x1b[1mAA\x1b[0mPL row\nother")
	m.performSearch("AAPL")
	if diff := cmp.Diff([]int{0}, m.search.matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestPagerJumpWraps(t *testing.T) {
	m := newSizedPager(t, "a\nb\na\nb\na")
	m.performSearch("a")

	var got []int
	for range 4 {
		m.jump(1)
		got = append(got, m.search.current)
	}
	m.jump(-1)
	got = append(got, m.search.current)

	if diff := cmp.Diff([]int{1, 2, 0, 1, 0}, got); diff != "" {
		t.Errorf("current mismatch (-want +got):\n%s", diff)
	}
}

func TestPagerKeys(t *testing.T) {
	m := newSizedPager(t, "alpha\ngamma\ndelta")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.search.active {
		t.Fatal("expected search input to be active")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("gamma")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.search.active {
		t.Error("search input should close on enter")
	}
	if diff := cmp.Diff([]int{1}, m.search.matches); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
	if view := m.View(); !strings.Contains(view, "1/1") {
		t.Errorf("help line should show match position, got:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if m.search.query != "" || len(m.search.matches) != 0 {
		t.Error("esc should clear the search")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
