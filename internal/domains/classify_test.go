package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(
		[]string{"linkedin.com", "lnkd.in"},
		[]string{"lever.co", "greenhouse.io", "workday.com"},
	)
}

func TestIsAggregator(t *testing.T) {
	c := newTestClassifier()

	assert.True(t, c.IsAggregator("https://www.linkedin.com/jobs/view/123"))
	assert.True(t, c.IsAggregator("https://de.linkedin.com/company/acme"))
	assert.True(t, c.IsAggregator("https://lnkd.in/abc"))
	assert.False(t, c.IsAggregator("https://acme.example"))
	assert.False(t, c.IsAggregator("https://jobs.lever.co/acme"))
}

func TestIsAggregator_MalformedOrEmpty(t *testing.T) {
	c := newTestClassifier()

	assert.False(t, c.IsAggregator(""))
	assert.False(t, c.IsAggregator("not a url"))
	assert.False(t, c.IsAggregator("/relative/path"))
}

func TestIsATS(t *testing.T) {
	c := newTestClassifier()

	assert.True(t, c.IsATS("https://jobs.lever.co/acme"))
	assert.True(t, c.IsATS("https://boards.greenhouse.io/acme"))
	assert.True(t, c.IsATS("https://acme.wd1.myworkday.workday.com/en/careers"))
	assert.False(t, c.IsATS("https://acme.example/careers"))
}

func TestClassify(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, KindAggregator, c.Classify("https://linkedin.com/jobs"))
	assert.Equal(t, KindATS, c.Classify("https://jobs.lever.co/acme"))
	assert.Equal(t, KindCompany, c.Classify("https://acme.example"))
}
