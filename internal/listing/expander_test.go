package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrollRenderer serves a sequence of rendered snapshots, one per scroll
// iteration, repeating the last one once exhausted.
type scrollRenderer struct {
	snapshots []string
	calls     int
	err       error
}

func (r *scrollRenderer) Render(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", errors.New("not used")
}

func (r *scrollRenderer) Scroll(_ context.Context, _ string, _ time.Duration, maxScrolls int, step func(string) bool) error {
	if r.err != nil {
		return r.err
	}
	for i := 0; i < maxScrolls; i++ {
		snapshot := r.snapshots[min(r.calls, len(r.snapshots)-1)]
		r.calls++
		if !step(snapshot) {
			break
		}
	}
	return nil
}

func page(anchors ...string) string {
	html := "<html><body>"
	for _, a := range anchors {
		html += `<a href="` + a + `">posting</a>`
	}
	return html + "</body></html>"
}

func TestIsPosting(t *testing.T) {
	assert.True(t, IsPosting("https://www.linkedin.com/jobs/view/123"))
	assert.False(t, IsPosting("https://www.linkedin.com/jobs/search/?keywords=go"))
}

func TestExpand_CollectsAcrossScrolls(t *testing.T) {
	base := "https://www.linkedin.com/jobs/search/?keywords=go"
	renderer := &scrollRenderer{snapshots: []string{
		page("/jobs/view/1?refId=a"),
		page("/jobs/view/1?refId=b", "/jobs/view/2"),
		page("/jobs/view/1", "/jobs/view/2"), // no growth: stop
	}}

	e := NewExpander(renderer, time.Millisecond, 10, false)
	got := e.Expand(context.Background(), base)

	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/1",
		"https://www.linkedin.com/jobs/view/2",
	}, got)
	assert.Equal(t, 3, renderer.calls)
}

func TestExpand_FixedPoint(t *testing.T) {
	base := "https://www.linkedin.com/jobs/search/"
	snapshot := page("/jobs/view/1", "/jobs/view/2", "/jobs/view/3")

	first := NewExpander(&scrollRenderer{snapshots: []string{snapshot}}, time.Millisecond, 5, false).
		Expand(context.Background(), base)
	again := NewExpander(&scrollRenderer{snapshots: []string{snapshot}}, time.Millisecond, 6, false).
		Expand(context.Background(), base)

	// One extra available iteration after the set stops growing changes nothing.
	assert.Equal(t, first, again)
}

func TestExpand_MaxScrollCap(t *testing.T) {
	// Every snapshot introduces a new posting, so only the cap stops it.
	snapshots := make([]string, 0, 8)
	anchors := make([]string, 0, 8)
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		anchors = append(anchors, "/jobs/view/"+id)
		snapshots = append(snapshots, page(anchors...))
	}
	renderer := &scrollRenderer{snapshots: snapshots}

	e := NewExpander(renderer, time.Millisecond, 3, false)
	got := e.Expand(context.Background(), "https://www.linkedin.com/jobs/search/")

	assert.Len(t, got, 3)
	assert.Equal(t, 3, renderer.calls)
}

func TestExpand_IgnoresNonPostingLinks(t *testing.T) {
	renderer := &scrollRenderer{snapshots: []string{
		`<html><body>
			<a href="/jobs/search/?page=2">Next</a>
			<a href="/jobs/view/42?tracking=x">Engineer</a>
			<a href="https://other.example/jobs/view/7">External posting</a>
		</body></html>`,
	}}

	e := NewExpander(renderer, time.Millisecond, 5, false)
	got := e.Expand(context.Background(), "https://www.linkedin.com/jobs/search/")

	require.Len(t, got, 2)
	assert.Contains(t, got, "https://www.linkedin.com/jobs/view/42")
	assert.Contains(t, got, "https://other.example/jobs/view/7")
}

func TestExpand_NoRenderer(t *testing.T) {
	e := NewExpander(nil, time.Millisecond, 5, false)
	assert.Empty(t, e.Expand(context.Background(), "https://www.linkedin.com/jobs/search/"))
}

func TestExpand_RendererFailureKeepsNothingButDoesNotPanic(t *testing.T) {
	e := NewExpander(&scrollRenderer{err: errors.New("browser crashed")}, time.Millisecond, 5, false)
	assert.Empty(t, e.Expand(context.Background(), "https://www.linkedin.com/jobs/search/"))
}
