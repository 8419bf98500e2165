package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>Site | Understanding Go Channels</title>
  <meta name="keywords" content="Go, Concurrency, channels, go">
  <meta property="article:tag" content="Goroutines">
  <meta property="article:tag" content="Testing">
  <meta property="article:tag" content="Extra">
</head>
<body>
  <article>
    <h1>Understanding Go Channels</h1>
    <p>Channels are the pipes that connect concurrent goroutines. You can send values into channels
    from one goroutine and receive those values into another goroutine. This article walks through
    buffered and unbuffered channels, select statements and common patterns such as fan-in and fan-out.</p>
    <p>Channels are typed by the values they convey. Closing a channel signals that no more values will
    be sent, which is useful to communicate completion to the channel's receivers.</p>
  </article>
</body>
</html>`

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("https://go.dev/blog"))
	assert.True(t, IsReference(" http://example.com/a "))
	assert.False(t, IsReference("golang channels"))
	assert.False(t, IsReference("ftp://example.com"))
	assert.False(t, IsReference("https://"))
}

func TestResearch_PlainTopic(t *testing.T) {
	title, keywords, err := NewFetcher().Research(context.Background(), "  go generics ")
	require.NoError(t, err)
	assert.Equal(t, "go generics", title)
	assert.Empty(t, keywords)
}

func TestResearch_Reference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	title, keywords, err := newFetcher(true).Research(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Contains(t, title, "Understanding Go Channels")
	assert.Equal(t, []string{"go", "concurrency", "channels", "goroutines", "testing"}, keywords)
}

func TestResearch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, _, err := newFetcher(true).Research(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 410")
}

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Feed</title>
<item><title>Go 1.23 released</title><link>https://example.com/1</link></item>
<item><title>Iterators in Go</title><link>https://example.com/2</link></item>
<item><title>go 1.23 released</title><link>https://example.com/3</link></item>
<item><title>Profiling tips</title><link>https://example.com/4</link></item>
</channel></rss>`

func TestSuggestTopics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher()
	topics := f.SuggestTopics(context.Background(), []string{srv.URL + "/broken", "", srv.URL + "/feed"}, 10)
	assert.Equal(t, []string{"Go 1.23 released", "Iterators in Go", "Profiling tips"}, topics)

	limited := f.SuggestTopics(context.Background(), []string{srv.URL + "/feed"}, 2)
	assert.Equal(t, []string{"Go 1.23 released", "Iterators in Go"}, limited)
}

func TestResearch_RefusesNonPublicAddress(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	_, _, err := NewFetcher().Research(context.Background(), srv.URL+"/post")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.Zero(t, hits.Load())
}

func TestResearch_RefusesAddressLiterals(t *testing.T) {
	_, _, err := NewFetcher().Research(context.Background(), "http://169.254.169.254/latest/meta-data/")
	assert.ErrorIs(t, err, ErrBlockedAddress)
	_, _, err = NewFetcher().Research(context.Background(), "http://[::1]:1/")
	assert.ErrorIs(t, err, ErrBlockedAddress)
}

func TestIsPublicIP(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":         true,
		"2606:4700::1111": true,
		"127.0.0.1":       false,
		"::1":             false,
		"10.1.2.3":        false,
		"172.16.0.1":      false,
		"192.168.1.1":     false,
		"169.254.169.254": false,
		"fe80::1":         false,
		"fd00::1":         false,
		"0.0.0.0":         false,
		"::":              false,
		"224.0.0.1":       false,
		"100.64.0.1":      false,
		"::ffff:10.0.0.1": false,
	}
	for addr, want := range cases {
		t.Run(addr, func(t *testing.T) {
			assert.Equal(t, want, isPublicIP(netip.MustParseAddr(addr)))
		})
	}
}
