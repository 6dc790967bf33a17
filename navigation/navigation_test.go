package navigation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/engine"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		current, href, want string
	}{
		{"index", "projects.html", "projects"},
		{"index", "./about.page", "about"},
		{"about", "/", "index"},
		{"about", "../index.html", "index"},
		{"about", "index", "index"},
		{"index", "about.html#team", "about"},
		{"index", " contact ", "contact"},
		{"index", "/works.htm", "works"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, err := Resolve(tt.current, tt.href)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveExternal(t *testing.T) {
	for _, href := range []string{
		"https://example.com",
		"http://example.com/about.html",
		"mailto:me@example.com",
		"tel:+123",
		"//cdn.example.com/x",
		"#top",
		"",
		"?q=1",
		"cv.pdf",
		"files/archive.ZIP",
		"photo.jpg",
		"logo.png",
	} {
		_, err := Resolve("index", href)
		assert.ErrorIs(t, err, ErrExternal, href)
	}
}

type fakeLoader struct {
	pages     map[string]*content.Page
	late      map[string]*content.Page // appear on Discover
	loads     map[string]int
	discovers int
}

func newFakeLoader(slugs ...string) *fakeLoader {
	l := &fakeLoader{
		pages: make(map[string]*content.Page),
		late:  make(map[string]*content.Page),
		loads: make(map[string]int),
	}
	for _, s := range slugs {
		l.pages[s] = &content.Page{Slug: s, Title: s}
	}
	return l
}

func (l *fakeLoader) Load(slug string) (*content.Page, error) {
	l.loads[slug]++
	if p, ok := l.pages[slug]; ok {
		return p, nil
	}
	return nil, content.ErrPageNotFound
}

func (l *fakeLoader) Discover() error {
	l.discovers++
	for s, p := range l.late {
		l.pages[s] = p
	}
	return nil
}

func instant() TransitionConfig {
	return TransitionConfig{Enabled: false}
}

func TestNavigatorHistory(t *testing.T) {
	l := newFakeLoader("index", "about", "works")
	n := New(l, engine.NewMockTimeProvider(time.Unix(0, 0)), instant(), nil)

	_, err := n.Go("about")
	require.ErrorIs(t, err, ErrNotStarted)

	_, err = n.Open("index")
	require.NoError(t, err)

	p, err := n.Go("about.html")
	require.NoError(t, err)
	assert.Equal(t, "about", p.Slug)

	_, err = n.Go("works.html")
	require.NoError(t, err)

	p, err = n.Back()
	require.NoError(t, err)
	assert.Equal(t, "about", p.Slug)

	p, err = n.Back()
	require.NoError(t, err)
	assert.Equal(t, "index", p.Slug)

	_, err = n.Back()
	assert.ErrorIs(t, err, ErrNoHistory)

	p, err = n.Forward()
	require.NoError(t, err)
	assert.Equal(t, "about", p.Slug)

	// a new link drops the forward stack
	_, err = n.Go("/")
	require.NoError(t, err)
	back, forward := n.History()
	assert.Equal(t, []string{"index", "about"}, back)
	assert.Empty(t, forward)
	_, err = n.Forward()
	assert.ErrorIs(t, err, ErrNoHistory)

	// every page was read from the loader once
	assert.Equal(t, 1, l.loads["about"])
	assert.Equal(t, 1, l.loads["index"])
}

func TestNavigatorSamePageIsNoop(t *testing.T) {
	l := newFakeLoader("index")
	n := New(l, nil, DefaultTransitionConfig(), nil)
	_, err := n.Open("index")
	require.NoError(t, err)

	p, err := n.Go("index.html")
	require.NoError(t, err)
	assert.Equal(t, "index", p.Slug)
	assert.Nil(t, n.Transition())
	back, _ := n.History()
	assert.Empty(t, back)
}

func TestNavigatorFallbackRediscover(t *testing.T) {
	l := newFakeLoader("index")
	l.late["fresh"] = &content.Page{Slug: "fresh"}
	n := New(l, nil, instant(), nil)
	_, err := n.Open("index")
	require.NoError(t, err)

	p, err := n.Go("fresh.html")
	require.NoError(t, err)
	assert.Equal(t, "fresh", p.Slug)
	assert.Equal(t, 1, l.discovers)
	assert.Equal(t, 2, l.loads["fresh"])
}

func TestNavigatorLoadFailureKeepsCurrent(t *testing.T) {
	l := newFakeLoader("index")
	n := New(l, nil, instant(), nil)
	_, err := n.Open("index")
	require.NoError(t, err)

	_, err = n.Go("missing.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, content.ErrPageNotFound))
	assert.Equal(t, "index", n.Current().Slug)
	back, _ := n.History()
	assert.Empty(t, back)
}

func TestNavigatorExternal(t *testing.T) {
	n := New(newFakeLoader("index"), nil, instant(), nil)
	_, err := n.Open("index")
	require.NoError(t, err)
	_, err = n.Go("https://example.com")
	assert.ErrorIs(t, err, ErrExternal)
}

func TestNavigatorTransitionBlocks(t *testing.T) {
	clock := engine.NewMockTimeProvider(time.Unix(100, 0))
	n := New(newFakeLoader("index", "about", "works"), clock, DefaultTransitionConfig(), nil)
	_, err := n.Open("index")
	require.NoError(t, err)

	_, err = n.Go("about")
	require.NoError(t, err)
	require.True(t, n.Transitioning())

	_, err = n.Go("works")
	assert.ErrorIs(t, err, ErrTransitioning)
	_, err = n.Back()
	assert.ErrorIs(t, err, ErrTransitioning)

	clock.Advance(3 * time.Second)
	assert.False(t, n.Transitioning())
	_, err = n.Go("works")
	assert.NoError(t, err)
}

func TestNavigatorPreloadAndInvalidate(t *testing.T) {
	l := newFakeLoader("index", "about")
	n := New(l, nil, instant(), nil)

	assert.Equal(t, 2, n.Preload([]string{"index", "about", "ghost"}))
	assert.Equal(t, 0, n.Preload([]string{"index"}))
	assert.True(t, n.Cached("about"))
	assert.False(t, n.Cached("ghost"))

	_, err := n.Open("index")
	require.NoError(t, err)
	assert.Equal(t, 1, l.loads["index"])

	l.pages["index"] = &content.Page{Slug: "index", Title: "changed"}
	p, err := n.Reload()
	require.NoError(t, err)
	assert.Equal(t, "changed", p.Title)
	assert.Equal(t, "changed", n.Current().Title)

	n.Invalidate("about")
	assert.False(t, n.Cached("about"))
}

func TestTransitionPhases(t *testing.T) {
	start := time.Unix(0, 0)
	tr := NewTransition(DefaultTransitionConfig(), start)

	assert.InDelta(t, 1.0, tr.Opacity(start), 1e-9)
	assert.False(t, tr.Swapped())

	now := start
	prev := 1.0
	for !tr.Swapped() {
		now = now.Add(10 * time.Millisecond)
		o := tr.Opacity(now)
		require.LessOrEqual(t, o, prev+1e-9, "fade-out must not brighten")
		prev = o
		require.True(t, now.Sub(start) < time.Second, "fade-out did not finish")
	}
	assert.False(t, tr.Done())

	for !tr.Done() {
		now = now.Add(10 * time.Millisecond)
		o := tr.Opacity(now)
		require.GreaterOrEqual(t, o, 0.0)
		require.LessOrEqual(t, o, 1.0)
		require.True(t, now.Sub(start) < 2*time.Second, "fade-in did not finish")
	}
	assert.Equal(t, 1.0, tr.Opacity(now))
}

func TestTransitionDisabled(t *testing.T) {
	tr := NewTransition(instant(), time.Unix(0, 0))
	assert.True(t, tr.Swapped())
	assert.True(t, tr.Done())
	assert.Equal(t, 1.0, tr.Opacity(time.Unix(0, 0)))
}

func TestTransitionMaxDuration(t *testing.T) {
	cfg := DefaultTransitionConfig()
	cfg.Frequency = 0.01 // far too slow to settle
	start := time.Unix(0, 0)
	tr := NewTransition(cfg, start)
	tr.Advance(start.Add(cfg.MaxDuration))
	assert.True(t, tr.Done())
}
