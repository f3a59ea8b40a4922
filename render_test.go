package frame_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"
	"sync"
	"testing"

	"impractical.co/frame"
)

func newTestSite(t *testing.T, fragments ...frame.Fragment) *frame.Site {
	t.Helper()

	store, err := frame.NewFragmentStore(fragments...)
	if err != nil {
		t.Fatalf("error building fragment store: %v", err)
	}
	site, err := frame.NewSite(store, testEntries)
	if err != nil {
		t.Fatalf("error building site: %v", err)
	}
	return site
}

func TestRenderOrder(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, frame.Fragment{Name: frame.HeadFragment, Content: "<title>T</title>"})
	out, err := site.Render(context.Background(), frame.PageRequest{
		CurrentPageID: "news",
		Body:          "<p>Hi</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pieces := []string{
		"<title>T</title>",
		`<a class="menuitem" href="/install">Install</a>`,
		`<a class="menuitem current" href="/news" aria-current="page">News</a>`,
		`<a class="menuitem" href="/tutorials">Tutorials</a>`,
		"<p>Hi</p>",
	}
	last := -1
	for _, piece := range pieces {
		pos := strings.Index(out, piece)
		if pos < 0 {
			t.Fatalf("expected output to contain %q, got:\n%s", piece, out)
		}
		if pos <= last {
			t.Errorf("expected %q to come later in the output, got:\n%s", piece, out)
		}
		last = pos
	}
	if n := strings.Count(out, `class="menuitem current"`); n != 1 {
		t.Errorf("expected exactly one active entry, found %d", n)
	}
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	site := newTestSite(t,
		frame.Fragment{Name: frame.HeadFragment, Content: "<title>T</title>"},
		frame.Fragment{Name: frame.StylesheetFragment, Content: "#page { position: absolute }"},
	)
	req := frame.PageRequest{CurrentPageID: "sources", Title: "Sources", Body: "<h1>Sources</h1>"}

	first, err := site.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := site.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical output, got:\n%s\n\nand:\n%s", first, second)
	}
}

func TestRenderConcurrent(t *testing.T) {
	t.Parallel()

	site := newTestSite(t, frame.Fragment{Name: frame.HeadFragment, Content: "<title>T</title>"})
	want := map[string]string{}
	for _, entry := range testEntries {
		out, err := site.Render(context.Background(), frame.PageRequest{CurrentPageID: entry.ID, Body: template.HTML("<p>" + entry.Label + "</p>")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want[entry.ID] = out
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		entry := testEntries[i%len(testEntries)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := site.Render(context.Background(), frame.PageRequest{CurrentPageID: entry.ID, Body: template.HTML("<p>" + entry.Label + "</p>")})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if out != want[entry.ID] {
				t.Errorf("concurrent render of %q differs from serial render", entry.ID)
			}
		}()
	}
	wg.Wait()
}

func TestRenderFailsOnlyWithoutHead(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		fragments []frame.Fragment
		wantErr   bool
	}{
		"head": {
			fragments: []frame.Fragment{{Name: frame.HeadFragment, Content: "<title>T</title>"}},
		},
		"empty-head": {
			fragments: []frame.Fragment{{Name: frame.HeadFragment}},
		},
		"head-and-stylesheet": {
			fragments: []frame.Fragment{
				{Name: frame.HeadFragment},
				{Name: frame.StylesheetFragment, Content: "a { color: blue }"},
			},
		},
		"no-fragments": {
			wantErr: true,
		},
		"stylesheet-only": {
			fragments: []frame.Fragment{{Name: frame.StylesheetFragment, Content: "a { color: blue }"}},
			wantErr:   true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			site := newTestSite(t, tc.fragments...)
			for _, pageID := range []string{"", "news", "forum"} {
				var buf bytes.Buffer
				err := site.RenderTo(context.Background(), &buf, frame.PageRequest{CurrentPageID: pageID, Body: "<p>Hi</p>"})
				if tc.wantErr {
					if !errors.Is(err, frame.ErrNotFound) {
						t.Errorf("page %q: expected ErrNotFound, got %v", pageID, err)
					}
					if buf.Len() != 0 {
						t.Errorf("page %q: expected nothing written, got %q", pageID, buf.String())
					}
					continue
				}
				if err != nil {
					t.Errorf("page %q: unexpected error: %v", pageID, err)
				}
			}
		})
	}
}

func TestRenderEscapesMenuButNotBody(t *testing.T) {
	t.Parallel()

	store, err := frame.NewFragmentStore(frame.Fragment{Name: frame.HeadFragment})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	site, err := frame.NewSite(store, []frame.NavEntry{
		{ID: "qa", Label: "Q&A <beta>", Href: "/q&a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := site.Render(context.Background(), frame.PageRequest{Body: "<b>bold & raw</b>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `>Q&amp;A &lt;beta&gt;</a>`) {
		t.Errorf("expected escaped menu label, got:\n%s", out)
	}
	if !strings.Contains(out, `href="/q&amp;a"`) {
		t.Errorf("expected escaped menu href, got:\n%s", out)
	}
	if !strings.Contains(out, "<b>bold & raw</b>") {
		t.Errorf("expected body inserted verbatim, got:\n%s", out)
	}
}

func TestSiteCopiesEntries(t *testing.T) {
	t.Parallel()

	entries := []frame.NavEntry{{ID: "news", Label: "News", Href: "/news"}}
	store, err := frame.NewFragmentStore(frame.Fragment{Name: frame.HeadFragment})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	site, err := frame.NewSite(store, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries[0].Label = "Changed"
	site.Entries()[0].Label = "Changed Again"

	if menu := site.Menu("news"); menu[0].Label != "News" || !menu[0].Active {
		t.Errorf("expected site entries to be unaffected by callers, got %+v", menu[0])
	}
}

func TestNewSiteErrors(t *testing.T) {
	t.Parallel()

	if _, err := frame.NewSite(nil, testEntries); !errors.Is(err, frame.ErrNoFragmentStore) {
		t.Errorf("expected ErrNoFragmentStore, got %v", err)
	}
	store, err := frame.NewFragmentStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := frame.NewSite(store, nil); !errors.Is(err, frame.ErrNoNavEntries) {
		t.Errorf("expected ErrNoNavEntries, got %v", err)
	}
}
